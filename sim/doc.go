// Package sim implements platoon-aware traffic-signal coordination over a
// live SUMO simulation.
//
// # Reading Guide
//
// Start with these three files to understand the coordination kernel:
//   - maingreen.go: which phases of each signal give the main road green
//   - policy.go: the per-signal phase timer and green-extension rule
//   - controller.go: the tick loop that drives the simulator and metrics
//
// # Architecture
//
// The sim package defines the simulator-facing interface and the decision
// logic; supporting implementations live in sub-packages:
//   - sim/traci/: TCP client for SUMO's TraCI remote-control protocol
//   - sim/scenario/: scenario descriptors and generated simulator inputs
//   - sim/store/: SQLite persistence for per-tick metrics
//   - sim/report/: summary statistics and HTML charts from recorded runs
//
// Everything is single-threaded: TraCI is a strict
// request/response protocol over one socket, so one goroutine owns the
// connection and all mutable per-run state for the duration of a run.
//
// # Data flow
//
// The signal-lane mapping artifact (signalmap.go) and each signal's phase
// program are loaded once before the loop starts and are immutable
// afterward. DeriveMainGreen folds them into the MainGreenSet consulted
// every tick. The ProximityDetector (detector.go) queries live vehicle
// state on demand; per-signal SignalState is owned exclusively by the
// PhasePolicy.
package sim
