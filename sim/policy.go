package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Jones-Shaun/platoon-sumo/sim/traci"
)

// SignalState is the per-signal runtime of the phase timer. Exactly one
// instance exists per managed signal, owned and mutated only by the policy.
type SignalState struct {
	CurrentPhase int
	Elapsed      int     // ticks spent in the current phase
	Duration     float64 // nominal duration of the current phase in seconds
	Extensions   int     // consecutive extensions of the current phase
}

// PhasePolicy advances each managed traffic light on its fixed-time
// schedule, except that a main-road green phase is held while a platoon is
// approaching its stop line. One tick is one second of simulation time.
type PhasePolicy struct {
	API       SimAPI
	Programs  map[string][]traci.Phase
	MainGreen MainGreenSet
	Detector  *ProximityDetector

	// DetectionDistance is the stop-line radius within which an approaching
	// platoon holds the green, in meters.
	DetectionDistance float64

	// MaxExtensions caps consecutive extensions of one phase. Zero means
	// unbounded, which reproduces the original behavior: an unbroken stream
	// of platoons can hold the phase indefinitely.
	MaxExtensions int

	States map[string]*SignalState

	log *logrus.Entry
}

// NewPhasePolicy seeds the per-signal runtime states from the simulator's
// current phases. A reported phase outside the stored program is clamped to
// phase 0 with a warning rather than treated as fatal; signals with empty
// programs are left unmanaged.
func NewPhasePolicy(api SimAPI, programs map[string][]traci.Phase, mainGreen MainGreenSet, detector *ProximityDetector, detectionDistance float64) (*PhasePolicy, error) {
	p := &PhasePolicy{
		API:               api,
		Programs:          programs,
		MainGreen:         mainGreen,
		Detector:          detector,
		DetectionDistance: detectionDistance,
		States:            make(map[string]*SignalState, len(programs)),
		log:               logrus.WithField("module", "policy"),
	}
	for signal, phases := range programs {
		if len(phases) == 0 {
			p.log.Warnf("signal %q has no phases, leaving it unmanaged", signal)
			continue
		}
		current, err := api.CurrentPhase(signal)
		if err != nil {
			return nil, fmt.Errorf("current phase of %q: %w", signal, err)
		}
		if current < 0 || current >= len(phases) {
			p.log.Warnf("signal %q reports phase %d outside its %d-phase program, clamping to 0", signal, current, len(phases))
			current = 0
		}
		p.States[signal] = &SignalState{
			CurrentPhase: current,
			Duration:     phases[current].Duration,
		}
	}
	return p, nil
}

// Tick runs one timer step for a single signal. Call once per simulation
// step for every managed signal; evaluation order across signals does not
// matter, there is no cross-signal interaction.
func (p *PhasePolicy) Tick(signal string) error {
	st, ok := p.States[signal]
	if !ok {
		return nil
	}
	st.Elapsed++
	if float64(st.Elapsed) < st.Duration {
		return nil
	}

	// Phase expired: hold it only while a main-road green has a platoon
	// close to the stop line.
	if p.MainGreen.Contains(signal, st.CurrentPhase) {
		near, err := p.Detector.Approaching(signal, p.DetectionDistance)
		if err != nil {
			return err
		}
		if near && (p.MaxExtensions == 0 || st.Extensions < p.MaxExtensions) {
			st.Extensions++
			p.log.Debugf("extending phase %d of %q (%d ticks elapsed)", st.CurrentPhase, signal, st.Elapsed)
			return nil
		}
	}
	return p.advance(signal, st)
}

// TickFixedTime runs one timer step without the extension rule, for
// baseline (uncoordinated) runs: phases always advance on schedule.
func (p *PhasePolicy) TickFixedTime(signal string) error {
	st, ok := p.States[signal]
	if !ok {
		return nil
	}
	st.Elapsed++
	if float64(st.Elapsed) < st.Duration {
		return nil
	}
	return p.advance(signal, st)
}

func (p *PhasePolicy) advance(signal string, st *SignalState) error {
	phases := p.Programs[signal]
	st.CurrentPhase = (st.CurrentPhase + 1) % len(phases)
	if err := p.API.SetPhase(signal, st.CurrentPhase); err != nil {
		return fmt.Errorf("setting phase %d on %q: %w", st.CurrentPhase, signal, err)
	}
	st.Elapsed = 0
	st.Extensions = 0
	st.Duration = phases[st.CurrentPhase].Duration
	return nil
}

// ManagedSignals returns the signals the policy is driving, for logging and
// the tick loop.
func (p *PhasePolicy) ManagedSignals() []string {
	signals := make([]string, 0, len(p.States))
	for signal := range p.States {
		signals = append(signals, signal)
	}
	return signals
}
