package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Jones-Shaun/platoon-sumo/sim/traci"
)

// Controller owns all per-run state of one coordinated simulation: the
// simulator connection, the derived lookup tables, the per-signal phase
// timers and the metrics pipeline. Nothing is process-wide, so independent
// runs can coexist as long as each has its own simulator connection.
type Controller struct {
	API       SimAPI
	Config    Config
	Policy    *PhasePolicy
	Collector *MetricsCollector
	Sink      Sink

	// Coordinate false runs the pure fixed-time baseline: phases advance on
	// schedule and platoon proximity is never consulted.
	Coordinate bool

	// Platooner, when set, forms and splits platoons each tick before the
	// policy runs. Nil when an external platooning subsystem manages the
	// vehicle types.
	Platooner *PlatoonManager

	log *logrus.Entry
}

// NewController builds the full pipeline over a connected simulator: reads
// every traffic light's program, derives the main-green set from the signal
// mapping, and seeds the phase timers from the simulator's current phases.
//
// membership selects the platoon-membership capability; nil falls back to
// the type-tag heuristic configured by cfg.
func NewController(api SimAPI, cfg Config, signalMap SignalLaneMap, sink Sink, membership MembershipSource) (*Controller, error) {
	log := logrus.WithField("module", "controller")

	signals, err := api.TrafficLightIDs()
	if err != nil {
		return nil, fmt.Errorf("listing traffic lights: %w", err)
	}
	log.Infof("found %d traffic lights", len(signals))

	programs := make(map[string][]traci.Phase, len(signals))
	for _, signal := range signals {
		logics, err := api.PhaseDefinitions(signal)
		if err != nil {
			return nil, fmt.Errorf("phase definitions of %q: %w", signal, err)
		}
		if len(logics) == 0 || len(logics[0].Phases) == 0 {
			log.Warnf("signal %q has no program, skipping it", signal)
			continue
		}
		// The first program is the one the network loads by default.
		programs[signal] = logics[0].Phases
	}

	mainEdges := cfg.MainEdges()
	mainGreen := DeriveMainGreen(signalMap, programs, mainEdges)
	for signal := range programs {
		if phases := mainGreen.Phases(signal); len(phases) > 0 {
			log.Infof("signal %q: main-road green phases %v", signal, phases)
		} else {
			log.Infof("signal %q: no main-road approach, fixed-time only", signal)
		}
	}

	if membership == nil {
		membership = HeuristicSource{HeavyMarker: cfg.HeavyMarker, PlatoonMarker: cfg.PlatoonMarker}
	}
	detector := NewProximityDetector(api, signalMap, mainEdges, membership)

	policy, err := NewPhasePolicy(api, programs, mainGreen, detector, cfg.DetectionDistance)
	if err != nil {
		return nil, err
	}
	policy.MaxExtensions = cfg.MaxExtensions

	collector, err := NewMetricsCollector(api, cfg.NorthboundEdges, cfg.SouthboundEdges)
	if err != nil {
		return nil, err
	}

	return &Controller{
		API:        api,
		Config:     cfg,
		Policy:     policy,
		Collector:  collector,
		Sink:       sink,
		Coordinate: true,
		log:        log,
	}, nil
}

// Run drives the simulation for the given number of steps. Each tick runs
// to completion once started; cancellation is honored only at tick
// boundaries. On any simulator error the loop stops, the connection is
// closed, and the error is returned. A dropped session cannot be resumed
// because the simulator holds the authoritative traffic state.
func (c *Controller) Run(ctx context.Context, steps int) error {
	signals := c.Policy.ManagedSignals()
	c.log.Infof("starting run: %d steps, %d managed signals, coordination=%v", steps, len(signals), c.Coordinate)

	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			c.log.Warnf("run canceled at step %d", step)
			return ctx.Err()
		default:
		}
		if err := c.tick(step, signals); err != nil {
			c.log.Errorf("step %d failed: %v", step, err)
			_ = c.API.Close()
			return fmt.Errorf("step %d: %w", step, err)
		}
	}
	c.log.Infof("run complete after %d steps", steps)
	return nil
}

func (c *Controller) tick(step int, signals []string) error {
	if err := c.API.SimulationStep(); err != nil {
		return err
	}
	if c.Platooner != nil {
		if err := c.Platooner.Step(); err != nil {
			return err
		}
	}
	for _, signal := range signals {
		if c.Coordinate {
			if err := c.Policy.Tick(signal); err != nil {
				return err
			}
		} else {
			if err := c.Policy.TickFixedTime(signal); err != nil {
				return err
			}
		}
	}
	row, err := c.Collector.Collect(step)
	if err != nil {
		return err
	}
	if c.Sink != nil {
		if err := c.Sink.Append(row); err != nil {
			return fmt.Errorf("emitting metrics: %w", err)
		}
	}
	return nil
}
