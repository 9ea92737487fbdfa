package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jones-Shaun/platoon-sumo/sim/scenario"
)

var (
	scenarioDir    string
	scenarioSizes  []int
	scenarioCounts []int
	scenarioLevels []string
	scenarioSeed   int64
)

// scenarioCmd generates simulator input files for a sweep of scenarios.
var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Generate route, platooning and simulator configs for a scenario sweep",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		levels := make([]scenario.TrafficLevel, 0, len(scenarioLevels))
		for _, l := range scenarioLevels {
			level := scenario.TrafficLevel(l)
			if !level.Valid() {
				logrus.Fatalf("unknown traffic level %q (want %s, %s or %s)",
					l, scenario.PlatoonOnly, scenario.Light, scenario.Heavy)
			}
			levels = append(levels, level)
		}

		descriptors := scenario.Grid(scenarioSizes, scenarioCounts, levels)
		generated, err := scenario.Generate(scenario.Options{
			Dir:            scenarioDir,
			NetworkFile:    cfg.NetworkFile,
			MainRouteEdges: cfg.NorthboundEdges,
			SimTime:        cfg.SimTime,
			MasterSeed:     scenarioSeed,
		}, descriptors)
		if err != nil {
			logrus.Fatalf("generating scenarios: %v", err)
		}
		logrus.Infof("generated %d scenarios in %s", len(generated), scenarioDir)
	},
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioDir, "dir", "generated_configs", "Output directory")
	scenarioCmd.Flags().IntSliceVar(&scenarioSizes, "platoon-sizes", []int{5}, "Platoon sizes to generate (3-10 is the studied range)")
	scenarioCmd.Flags().IntSliceVar(&scenarioCounts, "platoon-counts", []int{1}, "Number of platoons per scenario")
	scenarioCmd.Flags().StringSliceVar(&scenarioLevels, "traffic-levels",
		[]string{string(scenario.PlatoonOnly), string(scenario.Light), string(scenario.Heavy)},
		"Background traffic levels")
	scenarioCmd.Flags().Int64Var(&scenarioSeed, "seed", 23423, "Master seed for per-scenario simulator seeds")

	rootCmd.AddCommand(scenarioCmd)
}
