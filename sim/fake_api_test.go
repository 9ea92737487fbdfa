package sim

import (
	"fmt"

	"github.com/Jones-Shaun/platoon-sumo/sim/traci"
)

// fakeAPI is an in-memory SimAPI for tests. All state is plain maps the test
// mutates directly between ticks; every query that misses returns an error,
// like a live simulator would.
type fakeAPI struct {
	steps int // SimulationStep call count

	vehicles     []string
	vehicleSpeed map[string]float64
	vehicleType  map[string]string
	vehiclePos   map[string]float64

	laneEdge     map[string]string
	laneLength   map[string]float64
	laneVehicles map[string][]string

	edges     []string
	edgeCount map[string]int
	edgeSpeed map[string]float64
	edgeLanes map[string]int

	signals []string
	phase   map[string]int
	links   map[string][][]traci.Link
	logics  map[string][]traci.Logic

	setPhaseCalls []string // "signal:phase" in call order
	setTypeCalls  []string // "vehicle:type" in call order
	closed        bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		vehicleSpeed: map[string]float64{},
		vehicleType:  map[string]string{},
		vehiclePos:   map[string]float64{},
		laneEdge:     map[string]string{},
		laneLength:   map[string]float64{},
		laneVehicles: map[string][]string{},
		edgeCount:    map[string]int{},
		edgeSpeed:    map[string]float64{},
		edgeLanes:    map[string]int{},
		phase:        map[string]int{},
		links:        map[string][][]traci.Link{},
		logics:       map[string][]traci.Logic{},
	}
}

// addVehicle places a vehicle on a lane with the given type, speed and
// position along the lane.
func (f *fakeAPI) addVehicle(id, lane, typeID string, pos, speed float64) {
	f.vehicles = append(f.vehicles, id)
	f.vehicleType[id] = typeID
	f.vehiclePos[id] = pos
	f.vehicleSpeed[id] = speed
	f.laneVehicles[lane] = append(f.laneVehicles[lane], id)
}

// addLane registers a lane of the given length on an edge.
func (f *fakeAPI) addLane(id, edge string, length float64) {
	f.laneEdge[id] = edge
	f.laneLength[id] = length
	if _, ok := f.laneVehicles[id]; !ok {
		f.laneVehicles[id] = nil
	}
}

func (f *fakeAPI) SimulationStep() error { f.steps++; return nil }

func (f *fakeAPI) VehicleIDs() ([]string, error) { return f.vehicles, nil }

func (f *fakeAPI) VehicleSpeed(id string) (float64, error) {
	v, ok := f.vehicleSpeed[id]
	if !ok {
		return 0, fmt.Errorf("unknown vehicle %q", id)
	}
	return v, nil
}

func (f *fakeAPI) VehicleTypeID(id string) (string, error) {
	v, ok := f.vehicleType[id]
	if !ok {
		return "", fmt.Errorf("unknown vehicle %q", id)
	}
	return v, nil
}

func (f *fakeAPI) VehicleLanePosition(id string) (float64, error) {
	v, ok := f.vehiclePos[id]
	if !ok {
		return 0, fmt.Errorf("unknown vehicle %q", id)
	}
	return v, nil
}

func (f *fakeAPI) SetVehicleTypeID(id, typeID string) error {
	if _, ok := f.vehicleType[id]; !ok {
		return fmt.Errorf("unknown vehicle %q", id)
	}
	f.vehicleType[id] = typeID
	f.setTypeCalls = append(f.setTypeCalls, fmt.Sprintf("%s:%s", id, typeID))
	return nil
}

func (f *fakeAPI) LaneEdgeID(id string) (string, error) {
	v, ok := f.laneEdge[id]
	if !ok {
		return "", fmt.Errorf("unknown lane %q", id)
	}
	return v, nil
}

func (f *fakeAPI) LaneLength(id string) (float64, error) {
	v, ok := f.laneLength[id]
	if !ok {
		return 0, fmt.Errorf("unknown lane %q", id)
	}
	return v, nil
}

func (f *fakeAPI) LaneVehicleIDs(id string) ([]string, error) {
	v, ok := f.laneVehicles[id]
	if !ok {
		return nil, fmt.Errorf("unknown lane %q", id)
	}
	return v, nil
}

func (f *fakeAPI) EdgeIDs() ([]string, error) { return f.edges, nil }

func (f *fakeAPI) EdgeVehicleCount(id string) (int, error) {
	v, ok := f.edgeCount[id]
	if !ok {
		return 0, fmt.Errorf("unknown edge %q", id)
	}
	return v, nil
}

func (f *fakeAPI) EdgeMeanSpeed(id string) (float64, error) {
	v, ok := f.edgeSpeed[id]
	if !ok {
		return 0, fmt.Errorf("unknown edge %q", id)
	}
	return v, nil
}

func (f *fakeAPI) EdgeLaneCount(id string) (int, error) {
	v, ok := f.edgeLanes[id]
	if !ok {
		return 0, fmt.Errorf("unknown edge %q", id)
	}
	return v, nil
}

func (f *fakeAPI) TrafficLightIDs() ([]string, error) { return f.signals, nil }

func (f *fakeAPI) CurrentPhase(id string) (int, error) {
	v, ok := f.phase[id]
	if !ok {
		return 0, fmt.Errorf("unknown traffic light %q", id)
	}
	return v, nil
}

func (f *fakeAPI) SetPhase(id string, phase int) error {
	if _, ok := f.phase[id]; !ok {
		return fmt.Errorf("unknown traffic light %q", id)
	}
	f.phase[id] = phase
	f.setPhaseCalls = append(f.setPhaseCalls, fmt.Sprintf("%s:%d", id, phase))
	return nil
}

func (f *fakeAPI) ControlledLinks(id string) ([][]traci.Link, error) {
	v, ok := f.links[id]
	if !ok {
		return nil, fmt.Errorf("unknown traffic light %q", id)
	}
	return v, nil
}

func (f *fakeAPI) PhaseDefinitions(id string) ([]traci.Logic, error) {
	v, ok := f.logics[id]
	if !ok {
		return nil, fmt.Errorf("unknown traffic light %q", id)
	}
	return v, nil
}

func (f *fakeAPI) Close() error { f.closed = true; return nil }

var _ SimAPI = (*fakeAPI)(nil)
