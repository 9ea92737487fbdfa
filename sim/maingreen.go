package sim

import (
	"slices"

	"github.com/samber/lo"

	"github.com/Jones-Shaun/platoon-sumo/sim/traci"
)

// MainGreenSet records, per traffic light, the phase indices during which at
// least one main-road approach has green. Derived once at startup; the
// extension policy consults it every tick.
type MainGreenSet map[string]map[int]bool

// Contains reports whether phase is a main-road-green phase of signal.
func (s MainGreenSet) Contains(signal string, phase int) bool {
	return s[signal][phase]
}

// Phases returns the sorted member phases of a signal, mainly for logging.
func (s MainGreenSet) Phases(signal string) []int {
	phases := lo.Keys(s[signal])
	slices.Sort(phases)
	return phases
}

// isGreen reports whether a light state character denotes green. Both 'G'
// (green with priority) and 'g' (ordinary green) count; yellow and red do
// not.
func isGreen(state byte) bool {
	return state == 'G' || state == 'g'
}

// DeriveMainGreen computes the main-green set from the signal-lane map, the
// phase programs, and the set of main-road edges. Pure: same inputs always
// yield the same result.
//
// A signal contributes iff at least one of its control indices maps to a
// main-road edge; signals without main indices are dropped entirely and
// stay on their fixed-time schedule. A main index whose position falls
// outside a phase's state string (uneven state lengths in a malformed
// network) is skipped for that phase.
func DeriveMainGreen(signalMap SignalLaneMap, programs map[string][]traci.Phase, mainEdges map[string]bool) MainGreenSet {
	result := make(MainGreenSet)
	for signal, phases := range programs {
		indices := mainIndices(signalMap, signal, mainEdges)
		if len(indices) == 0 {
			continue
		}
		green := make(map[int]bool)
		for phaseIdx, phase := range phases {
			for _, ctrlIdx := range indices {
				if ctrlIdx >= len(phase.State) {
					continue
				}
				if isGreen(phase.State[ctrlIdx]) {
					green[phaseIdx] = true
					break
				}
			}
		}
		if len(green) > 0 {
			result[signal] = green
		}
	}
	return result
}

// mainIndices returns the sorted control indices of a signal whose mapped
// edge is a main-road edge.
func mainIndices(signalMap SignalLaneMap, signal string, mainEdges map[string]bool) []int {
	indices := make([]int, 0)
	for idx := range signalMap[signal] {
		if edge, ok := signalMap.Lookup(signal, idx); ok && mainEdges[edge] {
			indices = append(indices, idx)
		}
	}
	slices.Sort(indices)
	return indices
}
