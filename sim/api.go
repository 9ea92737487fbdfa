package sim

import "github.com/Jones-Shaun/platoon-sumo/sim/traci"

// SimAPI is the slice of the simulator's remote-control surface the
// coordination loop depends on. *traci.Client satisfies it; tests use an
// in-memory fake. All calls block until the simulator answers and must be
// issued from a single goroutine.
type SimAPI interface {
	// SimulationStep advances the simulation clock by one step.
	SimulationStep() error

	VehicleIDs() ([]string, error)
	VehicleSpeed(id string) (float64, error)
	VehicleTypeID(id string) (string, error)
	VehicleLanePosition(id string) (float64, error)
	SetVehicleTypeID(id, typeID string) error

	LaneEdgeID(id string) (string, error)
	LaneLength(id string) (float64, error)
	LaneVehicleIDs(id string) ([]string, error)

	EdgeIDs() ([]string, error)
	EdgeVehicleCount(id string) (int, error)
	EdgeMeanSpeed(id string) (float64, error)
	EdgeLaneCount(id string) (int, error)

	TrafficLightIDs() ([]string, error)
	CurrentPhase(id string) (int, error)
	SetPhase(id string, phase int) error
	ControlledLinks(id string) ([][]traci.Link, error)
	PhaseDefinitions(id string) ([]traci.Logic, error)

	// Close shuts the simulator down and releases the connection. It must
	// be safe to call after a failed operation.
	Close() error
}

var _ SimAPI = (*traci.Client)(nil)
