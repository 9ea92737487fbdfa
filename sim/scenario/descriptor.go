// Package scenario generates simulator input files for platooning studies:
// route/flow definitions, the platooning subsystem configuration, and the
// simulator configuration that ties them together.
//
// Scenario parameters travel as explicit descriptors, written alongside the
// generated files as scenarios.yaml. Batch runners consume that index
// directly; parameters are never encoded into or parsed back out of
// filenames.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TrafficLevel selects the background traffic mixed in with the platoons.
type TrafficLevel string

const (
	// PlatoonOnly has no background traffic at all.
	PlatoonOnly TrafficLevel = "platoon_only"
	// Light adds a background car roughly every 12 seconds.
	Light TrafficLevel = "light_traffic"
	// Heavy adds a background car roughly every 2 seconds.
	Heavy TrafficLevel = "heavy_traffic"
)

// backgroundPeriod returns the car insertion period in seconds, or 0 for no
// background flow.
func (l TrafficLevel) backgroundPeriod() float64 {
	switch l {
	case Light:
		return 12
	case Heavy:
		return 2
	default:
		return 0
	}
}

// Valid reports whether l is one of the defined levels.
func (l TrafficLevel) Valid() bool {
	switch l {
	case PlatoonOnly, Light, Heavy:
		return true
	}
	return false
}

// Descriptor is the full parameter record of one scenario.
type Descriptor struct {
	Name         string       `yaml:"name"`
	PlatoonSize  int          `yaml:"platoon_size"`
	PlatoonCount int          `yaml:"platoon_count"`
	TrafficLevel TrafficLevel `yaml:"traffic_level"`

	// ConfigFile is filled by the generator: the sumocfg path relative to
	// the index file.
	ConfigFile string `yaml:"config_file,omitempty"`
}

// Validate rejects descriptors the generator cannot express.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if d.PlatoonSize < 2 {
		return fmt.Errorf("scenario %q: platoon size %d, need at least 2", d.Name, d.PlatoonSize)
	}
	if d.PlatoonCount < 1 {
		return fmt.Errorf("scenario %q: platoon count %d, need at least 1", d.Name, d.PlatoonCount)
	}
	if !d.TrafficLevel.Valid() {
		return fmt.Errorf("scenario %q: unknown traffic level %q", d.Name, d.TrafficLevel)
	}
	return nil
}

// index is the on-disk form of the descriptor list.
type index struct {
	Scenarios []Descriptor `yaml:"scenarios"`
}

// WriteIndex saves the descriptor index next to the generated files.
func WriteIndex(dir string, descriptors []Descriptor) error {
	data, err := yaml.Marshal(index{Scenarios: descriptors})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "scenarios.yaml"), data, 0644)
}

// ReadIndex loads the descriptor index written by a previous generation
// run.
func ReadIndex(dir string) ([]Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenarios.yaml"))
	if err != nil {
		return nil, err
	}
	var idx index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing scenario index: %w", err)
	}
	for _, d := range idx.Scenarios {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return idx.Scenarios, nil
}

// Grid builds one descriptor per combination of the given platoon sizes,
// platoon counts and traffic levels.
func Grid(sizes, counts []int, levels []TrafficLevel) []Descriptor {
	out := make([]Descriptor, 0, len(sizes)*len(counts)*len(levels))
	for _, level := range levels {
		for _, size := range sizes {
			for _, count := range counts {
				out = append(out, Descriptor{
					Name:         fmt.Sprintf("%s_size%d_count%d", level, size, count),
					PlatoonSize:  size,
					PlatoonCount: count,
					TrafficLevel: level,
				})
			}
		}
	}
	return out
}
