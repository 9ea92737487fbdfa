package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrMappingNotFound reports a missing signal mapping artifact. This is a
// setup defect: the mapping must be generated once per network before a
// coordinated run (see the mapping command).
var ErrMappingNotFound = errors.New("signal mapping file not found")

// MappingFormatError reports a malformed signal mapping artifact.
type MappingFormatError struct {
	Path string
	Err  error
}

func (e *MappingFormatError) Error() string {
	return fmt.Sprintf("signal mapping %s: %v", e.Path, e.Err)
}

func (e *MappingFormatError) Unwrap() error { return e.Err }

// LaneInfo records which lane a signal's control index governs and the edge
// that lane belongs to.
type LaneInfo struct {
	IncomingLane string `json:"incoming_lane"`
	EdgeID       string `json:"edge_id"`
}

// SignalLaneMap maps each traffic light to the lane governed by each of its
// control indices. Built once per network by the mapping generator and
// read-only afterward. A signal absent from the map is simply not managed
// by the coordination loop.
type SignalLaneMap map[string]map[int]LaneInfo

// Sentinel edge values the mapping generator emits when a lane's edge could
// not be resolved. Lookup treats them as absent so callers fall back to a
// live query.
var unresolvedEdges = map[string]bool{
	"":                     true,
	"UNKNOWN":              true,
	"N/A (Lane not found)": true, // written by an earlier generator version
}

// LoadSignalMap reads the mapping artifact produced by the mapping command.
// The file is keyed by signal identifier, then by stringified control index.
func LoadSignalMap(path string) (SignalLaneMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, path)
		}
		return nil, err
	}

	var raw map[string]map[string]LaneInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MappingFormatError{Path: path, Err: err}
	}

	m := make(SignalLaneMap, len(raw))
	for signal, indices := range raw {
		entry := make(map[int]LaneInfo, len(indices))
		for key, info := range indices {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 {
				return nil, &MappingFormatError{
					Path: path,
					Err:  fmt.Errorf("signal %q: control index %q is not a non-negative integer", signal, key),
				}
			}
			entry[idx] = info
		}
		m[signal] = entry
	}
	return m, nil
}

// Lookup returns the edge governed by a signal's control index. The second
// return is false when the signal or index is unknown, or when the recorded
// edge is an unresolved sentinel; the caller should then query the
// simulator directly rather than treat the miss as fatal.
func (m SignalLaneMap) Lookup(signal string, index int) (string, bool) {
	info, ok := m[signal][index]
	if !ok || unresolvedEdges[info.EdgeID] {
		return "", false
	}
	return info.EdgeID, true
}

// Save writes the mapping in the artifact format, indented for hand
// inspection.
func (m SignalLaneMap) Save(path string) error {
	raw := make(map[string]map[string]LaneInfo, len(m))
	for signal, indices := range m {
		entry := make(map[string]LaneInfo, len(indices))
		for idx, info := range indices {
			entry[strconv.Itoa(idx)] = info
		}
		raw[signal] = entry
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildSignalMap queries a live simulator for every traffic light's
// controlled links and records, per control index, the incoming lane and
// its edge. Lanes whose edge cannot be resolved get the UNKNOWN sentinel.
func BuildSignalMap(api SimAPI) (SignalLaneMap, error) {
	signals, err := api.TrafficLightIDs()
	if err != nil {
		return nil, fmt.Errorf("listing traffic lights: %w", err)
	}

	m := make(SignalLaneMap, len(signals))
	for _, signal := range signals {
		links, err := api.ControlledLinks(signal)
		if err != nil {
			return nil, fmt.Errorf("controlled links of %q: %w", signal, err)
		}
		entry := make(map[int]LaneInfo)
		idx := 0
		for _, group := range links {
			for _, link := range group {
				edge := "UNKNOWN"
				if link.Incoming != "" {
					if e, err := api.LaneEdgeID(link.Incoming); err == nil {
						edge = e
					}
				}
				entry[idx] = LaneInfo{IncomingLane: link.Incoming, EdgeID: edge}
				idx++
			}
		}
		m[signal] = entry
	}
	return m, nil
}
