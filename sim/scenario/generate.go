package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "scenario")

// Options controls one generation run.
type Options struct {
	Dir            string   // output directory
	NetworkFile    string   // path to the network file referenced by the sumocfg
	MainRouteEdges []string // edges of the main (northbound) route
	SimTime        int      // scenario length in seconds
	MasterSeed     int64    // per-scenario simulator seeds derive from this
}

// Generate writes route, simulator-config and platooning-config files for
// every descriptor, plus the scenarios.yaml index. Returns the descriptors
// with their ConfigFile fields filled.
func Generate(opts Options, descriptors []Descriptor) ([]Descriptor, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, err
	}

	// One platooning config is shared by every scenario.
	platooning, err := PlatooningXML()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(opts.Dir, "platooning.xml"), platooning, 0644); err != nil {
		return nil, err
	}

	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		routesName := d.Name + "_routes.xml"
		configName := d.Name + ".sumocfg"

		routes, err := RoutesXML(d, opts.MainRouteEdges, opts.SimTime)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(opts.Dir, routesName), routes, 0644); err != nil {
			return nil, err
		}

		cfg, err := SumoCfgXML(opts.NetworkFile, routesName, opts.SimTime, SeedFor(opts.MasterSeed, d.Name))
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(opts.Dir, configName), cfg, 0644); err != nil {
			return nil, err
		}

		d.ConfigFile = configName
		out = append(out, d)
		log.Infof("generated scenario %q (%d platoons of %d, %s)", d.Name, d.PlatoonCount, d.PlatoonSize, d.TrafficLevel)
	}

	if err := WriteIndex(opts.Dir, out); err != nil {
		return nil, fmt.Errorf("writing scenario index: %w", err)
	}
	return out, nil
}
