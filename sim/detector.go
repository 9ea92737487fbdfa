package sim

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// MembershipSource answers whether a vehicle belongs to a platoon. Which
// implementation to use is decided once at startup, not per vehicle per
// tick: the authoritative platooning subsystem when one is attached, the
// type-tag heuristic otherwise.
type MembershipSource interface {
	InPlatoon(vehicleID, typeID string) bool
}

// HeuristicSource classifies a vehicle as a platoon member from its type
// tag alone: the tag must contain both a heavy-vehicle marker and a platoon
// marker (substring match, case-insensitive). Deliberately loose: the
// platooning subsystem renames qualifying vehicles to types like
// "truck_platoon_leader", but the exact names vary per scenario.
type HeuristicSource struct {
	HeavyMarker   string // default "truck"
	PlatoonMarker string // default "platoon"
}

func (h HeuristicSource) InPlatoon(_, typeID string) bool {
	tag := strings.ToLower(typeID)
	heavy := h.HeavyMarker
	if heavy == "" {
		heavy = "truck"
	}
	platoon := h.PlatoonMarker
	if platoon == "" {
		platoon = "platoon"
	}
	return strings.Contains(tag, strings.ToLower(heavy)) &&
		strings.Contains(tag, strings.ToLower(platoon))
}

// AuthoritativeSource consults the platooning subsystem's membership query,
// falling back to a heuristic when the query fails for a vehicle. The
// heavy-vehicle type test always applies; the query only answers the
// membership half, so a non-heavy vehicle never counts even when the
// subsystem claims it.
type AuthoritativeSource struct {
	Query       func(vehicleID string) (bool, error)
	HeavyMarker string // default "truck"
	Fallback    MembershipSource
}

func (a AuthoritativeSource) InPlatoon(vehicleID, typeID string) bool {
	heavy := a.HeavyMarker
	if heavy == "" {
		heavy = "truck"
	}
	if !strings.Contains(strings.ToLower(typeID), strings.ToLower(heavy)) {
		return false
	}
	if a.Query != nil {
		if member, err := a.Query(vehicleID); err == nil {
			return member
		}
	}
	if a.Fallback != nil {
		return a.Fallback.InPlatoon(vehicleID, typeID)
	}
	return false
}

// ProximityDetector scans a traffic light's main-road approaches for
// platoon vehicles close to the stop line.
type ProximityDetector struct {
	API        SimAPI
	SignalMap  SignalLaneMap
	MainEdges  map[string]bool
	Membership MembershipSource

	log *logrus.Entry
}

// NewProximityDetector wires a detector over a live simulator connection.
func NewProximityDetector(api SimAPI, signalMap SignalLaneMap, mainEdges map[string]bool, membership MembershipSource) *ProximityDetector {
	if membership == nil {
		membership = HeuristicSource{}
	}
	return &ProximityDetector{
		API:        api,
		SignalMap:  signalMap,
		MainEdges:  mainEdges,
		Membership: membership,
		log:        logrus.WithField("module", "detector"),
	}
}

// Approaching reports whether any platoon vehicle is within threshold
// meters of the stop line on one of the signal's main-road incoming lanes.
// The boundary is inclusive: a vehicle at exactly threshold counts. The
// scan short-circuits on the first hit.
//
// Lane edges are resolved through the signal-lane map first, then by a live
// query when the map entry is missing or unresolved. A lane that fails both
// is skipped for this tick rather than failing the loop.
func (d *ProximityDetector) Approaching(signal string, threshold float64) (bool, error) {
	links, err := d.API.ControlledLinks(signal)
	if err != nil {
		return false, err
	}

	ctrlIdx := -1
	for _, group := range links {
		for _, link := range group {
			ctrlIdx++
			if link.Incoming == "" {
				continue
			}
			edge, ok := d.SignalMap.Lookup(signal, ctrlIdx)
			if !ok {
				live, err := d.API.LaneEdgeID(link.Incoming)
				if err != nil {
					d.log.Debugf("cannot resolve edge of lane %q: %v", link.Incoming, err)
					continue
				}
				edge = live
			}
			if !d.MainEdges[edge] {
				continue
			}
			hit, err := d.laneHasPlatoonWithin(link.Incoming, threshold)
			if err != nil {
				return false, err
			}
			if hit {
				return true, nil
			}
		}
	}
	return false, nil
}

func (d *ProximityDetector) laneHasPlatoonWithin(lane string, threshold float64) (bool, error) {
	vehicles, err := d.API.LaneVehicleIDs(lane)
	if err != nil {
		return false, err
	}
	if len(vehicles) == 0 {
		return false, nil
	}
	length, err := d.API.LaneLength(lane)
	if err != nil {
		return false, err
	}
	for _, id := range vehicles {
		typeID, err := d.API.VehicleTypeID(id)
		if err != nil {
			// The vehicle may have left the lane between queries.
			d.log.Debugf("type of vehicle %q: %v", id, err)
			continue
		}
		if !d.Membership.InPlatoon(id, typeID) {
			continue
		}
		pos, err := d.API.VehicleLanePosition(id)
		if err != nil {
			d.log.Debugf("position of vehicle %q: %v", id, err)
			continue
		}
		if length-pos <= threshold {
			d.log.Debugf("platoon vehicle %q %0.1fm from stop line on %q", id, length-pos, lane)
			return true, nil
		}
	}
	return false, nil
}
