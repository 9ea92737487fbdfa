package sim

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// PlatoonConfig parameterizes in-loop platoon formation. Values come from
// the platooning configuration generated next to the scenarios.
type PlatoonConfig struct {
	// Selector is the original vehicle type the manager may retype. Leader
	// and follower types derive from it, so a substring match covers all
	// three.
	Selector string
	Leader   string
	Follower string

	// MaxGap is the largest bumper-to-bumper distance, in meters, at which
	// two managed vehicles count as one platoon.
	MaxGap float64
	// VehicleLength approximates the managed vehicles' length; lane
	// positions are front-bumper positions, so it converts position
	// differences into gaps.
	VehicleLength float64
}

// PlatoonManager forms and splits platoons on the main-road edges by
// retyping managed vehicles, the way the simulator-side platooning
// subsystem would. Run it once per tick, before the detector looks at
// vehicle types.
//
// The rule is positional and memoryless: consecutive managed vehicles on
// one lane closer than MaxGap are a platoon (front vehicle becomes the
// leader, the rest followers); a managed vehicle with no platoon partner
// reverts to its original type.
type PlatoonManager struct {
	API    SimAPI
	Config PlatoonConfig
	Edges  []string // main-road edges, both directions

	log *logrus.Entry
}

func NewPlatoonManager(api SimAPI, cfg PlatoonConfig, edges []string) *PlatoonManager {
	return &PlatoonManager{
		API:    api,
		Config: cfg,
		Edges:  edges,
		log:    logrus.WithField("module", "platoon"),
	}
}

// laneVehicle is one managed vehicle's per-tick snapshot.
type laneVehicle struct {
	id     string
	typeID string
	pos    float64
}

// Step reassigns platoon roles on every managed lane for the current tick.
func (m *PlatoonManager) Step() error {
	for _, edge := range m.Edges {
		laneCount, err := m.API.EdgeLaneCount(edge)
		if err != nil {
			// The configured edge may be absent from the loaded network.
			m.log.Debugf("lane count of edge %q: %v", edge, err)
			continue
		}
		for i := 0; i < laneCount; i++ {
			if err := m.stepLane(fmt.Sprintf("%s_%d", edge, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *PlatoonManager) stepLane(lane string) error {
	ids, err := m.API.LaneVehicleIDs(lane)
	if err != nil {
		m.log.Debugf("vehicles on lane %q: %v", lane, err)
		return nil
	}

	managed := make([]laneVehicle, 0, len(ids))
	for _, id := range ids {
		typeID, err := m.API.VehicleTypeID(id)
		if err != nil {
			// The vehicle may have left the lane between queries.
			continue
		}
		if !strings.Contains(strings.ToLower(typeID), strings.ToLower(m.Config.Selector)) {
			continue
		}
		pos, err := m.API.VehicleLanePosition(id)
		if err != nil {
			continue
		}
		managed = append(managed, laneVehicle{id: id, typeID: typeID, pos: pos})
	}
	if len(managed) == 0 {
		return nil
	}
	// Downstream to upstream, so each vehicle's predecessor is in front of it.
	sort.Slice(managed, func(i, j int) bool { return managed[i].pos > managed[j].pos })

	start := 0
	for i := 1; i <= len(managed); i++ {
		if i < len(managed) && m.joined(managed[i-1], managed[i]) {
			continue
		}
		if err := m.assign(managed[start:i]); err != nil {
			return err
		}
		start = i
	}
	return nil
}

// joined reports whether rear still belongs to front's platoon.
func (m *PlatoonManager) joined(front, rear laneVehicle) bool {
	gap := front.pos - rear.pos - m.Config.VehicleLength
	return gap <= m.Config.MaxGap
}

// assign retypes one platoon: leader in front, followers behind; a platoon
// of one reverts to the original type.
func (m *PlatoonManager) assign(platoon []laneVehicle) error {
	if len(platoon) == 1 {
		return m.retype(platoon[0], m.Config.Selector)
	}
	if err := m.retype(platoon[0], m.Config.Leader); err != nil {
		return err
	}
	for _, v := range platoon[1:] {
		if err := m.retype(v, m.Config.Follower); err != nil {
			return err
		}
	}
	return nil
}

func (m *PlatoonManager) retype(v laneVehicle, typeID string) error {
	if v.typeID == typeID {
		return nil
	}
	if err := m.API.SetVehicleTypeID(v.id, typeID); err != nil {
		return fmt.Errorf("retyping vehicle %q to %q: %w", v.id, typeID, err)
	}
	m.log.Debugf("vehicle %q: %s -> %s", v.id, v.typeID, typeID)
	return nil
}
