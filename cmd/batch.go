package cmd

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jones-Shaun/platoon-sumo/sim"
	"github.com/Jones-Shaun/platoon-sumo/sim/scenario"
)

var (
	batchDir   string // directory holding scenarios.yaml and generated files
	batchSteps int    // overrides sim_time when positive
)

// batchCmd runs every generated scenario in sequence. A scenario that
// fails to start or dies mid-run is logged and skipped; the remaining
// scenarios still run.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every generated scenario back to back",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		signalMap, err := sim.LoadSignalMap(cfg.MappingFile)
		if err != nil {
			logrus.Fatalf("signal mapping: %v (run `platoon-sumo mapping` first)", err)
		}
		descriptors, err := scenario.ReadIndex(batchDir)
		if err != nil {
			logrus.Fatalf("scenario index: %v (run `platoon-sumo scenario` first)", err)
		}
		logrus.Infof("batch: %d scenarios", len(descriptors))

		// The generator writes one shared platooning config next to the
		// scenarios; without it the trucks stay untyped and coordination
		// has nothing to detect.
		platoonCfgPath := filepath.Join(batchDir, "platooning.xml")
		if _, err := os.Stat(platoonCfgPath); err != nil {
			logrus.Warnf("no platooning config at %s, running without platoon formation", platoonCfgPath)
			platoonCfgPath = ""
		}

		steps := cfg.SimTime
		if batchSteps > 0 {
			steps = batchSteps
		}

		failed := 0
		for _, d := range descriptors {
			// Each scenario gets its own metrics directory and its own
			// simulator connection; nothing is shared between runs.
			runCfg := cfg
			runCfg.OutputDir = filepath.Join(cfg.OutputDir, d.Name)
			configPath := filepath.Join(batchDir, d.ConfigFile)

			logrus.Infof("batch: starting %q (%d platoons of %d, %s)", d.Name, d.PlatoonCount, d.PlatoonSize, d.TrafficLevel)
			if err := runBatchScenario(cmd, runCfg, signalMap, configPath, platoonCfgPath, steps); err != nil {
				logrus.Errorf("batch: scenario %q failed, skipping: %v", d.Name, err)
				failed++
				continue
			}
		}
		if failed > 0 {
			logrus.Warnf("batch finished with %d of %d scenarios failed", failed, len(descriptors))
		} else {
			logrus.Infof("batch finished: all %d scenarios completed", len(descriptors))
		}
	},
}

func runBatchScenario(cmd *cobra.Command, cfg sim.Config, signalMap sim.SignalLaneMap, configPath, platoonCfgPath string, steps int) error {
	if err := ensureDir(cfg.OutputDir); err != nil {
		return err
	}
	return runOne(cmd.Context(), cfg, signalMap, configPath, platoonCfgPath, steps)
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "scenarios", "generated_configs", "Directory with generated scenarios and scenarios.yaml")
	batchCmd.Flags().IntVar(&batchSteps, "steps", 0, "Number of simulation steps per scenario (default: sim_time from config)")

	rootCmd.AddCommand(batchCmd)
}
