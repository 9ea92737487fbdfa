package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the per-run configuration. Everything the loop needs is loaded
// here before the simulator connection is opened; nothing is read from
// process-wide state afterward.
type Config struct {
	// NetworkFile is the simulator network referenced by scenarios, used by
	// the scenario generator.
	NetworkFile string `yaml:"network_file"`

	// MappingFile is the signal-to-lane mapping artifact.
	MappingFile string `yaml:"mapping_file"`

	// NorthboundEdges and SouthboundEdges define the main road. Signal
	// coordination targets these approaches; per-direction metrics sum over
	// them.
	NorthboundEdges []string `yaml:"northbound_edges"`
	SouthboundEdges []string `yaml:"southbound_edges"`

	// DetectionDistance is the platoon detection radius ahead of the stop
	// line, in meters.
	DetectionDistance float64 `yaml:"detection_distance"`

	// MaxExtensions caps consecutive green extensions per phase; 0 keeps
	// the historical unbounded behavior.
	MaxExtensions int `yaml:"max_extensions"`

	// SimTime is the number of simulation steps (one step = one second).
	SimTime int `yaml:"sim_time"`

	// HeavyMarker and PlatoonMarker drive the heuristic platoon-membership
	// classifier when the platooning subsystem is not attached.
	HeavyMarker   string `yaml:"heavy_marker"`
	PlatoonMarker string `yaml:"platoon_marker"`

	// OutputDir receives metrics CSVs, the SQLite database and reports.
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig mirrors the Fairfax County Parkway study setup.
func DefaultConfig() Config {
	return Config{
		NetworkFile: "osm/osm.net.xml",
		MappingFile: "traffic_signal_mapping.json",
		NorthboundEdges: []string{
			"228470926",
			"1318032192",
			"1318032193",
			"1318032191#0",
			"228463837",
			"173228852",
		},
		SouthboundEdges: []string{
			"116044310#0",
			"173228850#0",
			"173228850#0-AddedOffRampEdge",
			"173228850#1",
			"228463846#2",
		},
		DetectionDistance: 150,
		SimTime:           3600,
		HeavyMarker:       "truck",
		PlatoonMarker:     "platoon",
		OutputDir:         "simulation_metrics",
	}
}

// LoadConfig reads a YAML config, filling unset fields from the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, c.Validate()
}

// Validate rejects configurations the loop cannot run with.
func (c Config) Validate() error {
	if c.DetectionDistance < 0 {
		return errors.New("detection_distance must not be negative")
	}
	if c.MaxExtensions < 0 {
		return errors.New("max_extensions must not be negative")
	}
	if c.SimTime <= 0 {
		return errors.New("sim_time must be positive")
	}
	if len(c.NorthboundEdges) == 0 && len(c.SouthboundEdges) == 0 {
		return errors.New("no main-road edges configured")
	}
	return nil
}

// MainEdges returns the union of both directions as a membership set.
func (c Config) MainEdges() map[string]bool {
	edges := make(map[string]bool, len(c.NorthboundEdges)+len(c.SouthboundEdges))
	for _, e := range c.NorthboundEdges {
		edges[e] = true
	}
	for _, e := range c.SouthboundEdges {
		edges[e] = true
	}
	return edges
}
