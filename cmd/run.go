package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jones-Shaun/platoon-sumo/sim"
	"github.com/Jones-Shaun/platoon-sumo/sim/scenario"
	"github.com/Jones-Shaun/platoon-sumo/sim/store"
	"github.com/Jones-Shaun/platoon-sumo/sim/traci"
)

var (
	runScenario    string // sumocfg path for the run
	runGUI         bool   // launch sumo-gui instead of headless sumo
	runSteps       int    // overrides sim_time when positive
	runFixedTime   bool   // disable coordination, pure fixed-time baseline
	runMetricsName string // metrics CSV filename
	runPlatoonCfg  string // platooning.xml enabling in-loop platoon formation
)

// runCmd executes one coordinated simulation run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scenario with platoon-aware signal coordination",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if runScenario == "" {
			logrus.Fatal("--scenario is required")
		}
		if _, err := os.Stat(runScenario); err != nil {
			logrus.Fatalf("scenario file: %v", err)
		}

		signalMap, err := sim.LoadSignalMap(cfg.MappingFile)
		if err != nil {
			logrus.Fatalf("signal mapping: %v (run `platoon-sumo mapping` first)", err)
		}

		steps := cfg.SimTime
		if runSteps > 0 {
			steps = runSteps
		}

		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			logrus.Fatalf("output dir: %v", err)
		}
		if err := runOne(cmd.Context(), cfg, signalMap, runScenario, runPlatoonCfg, steps); err != nil {
			logrus.Fatalf("run failed: %v", err)
		}
	},
}

// runOne connects to the simulator, runs the loop, and tears everything
// down. Shared with the batch command. platoonCfgPath empty means the
// vehicle types are managed outside this process.
func runOne(parent context.Context, cfg sim.Config, signalMap sim.SignalLaneMap, scenarioPath, platoonCfgPath string, steps int) error {
	binary := "sumo"
	if runGUI {
		binary = "sumo-gui"
	}
	client, err := traci.Start(traci.StartOptions{Binary: binary, Config: scenarioPath})
	if err != nil {
		return err
	}

	name := scenarioName(scenarioPath)

	db, err := store.Open(filepath.Join(cfg.OutputDir, "metrics.db"))
	if err != nil {
		_ = client.Close()
		return err
	}
	defer func() { _ = db.Close() }()
	runSink, err := db.BeginRun(name)
	if err != nil {
		_ = client.Close()
		return err
	}

	csvSink, err := sim.NewCSVSink(filepath.Join(cfg.OutputDir, runMetricsName))
	if err != nil {
		_ = client.Close()
		return err
	}
	sink := sim.MultiSink{csvSink, runSink}
	defer func() { _ = sink.Close() }()

	controller, err := sim.NewController(client, cfg, signalMap, sink, nil)
	if err != nil {
		_ = client.Close()
		return err
	}
	controller.Coordinate = !runFixedTime
	if platoonCfgPath != "" {
		settings, err := scenario.LoadPlatooningXML(platoonCfgPath)
		if err != nil {
			_ = client.Close()
			return err
		}
		controller.Platooner = sim.NewPlatoonManager(client, sim.PlatoonConfig{
			Selector:      settings.VehicleSelector,
			Leader:        settings.Leader,
			Follower:      settings.Follower,
			MaxGap:        settings.MaxPlatoonGap,
			VehicleLength: settings.MaxVehicleLength,
		}, append(append([]string{}, cfg.NorthboundEdges...), cfg.SouthboundEdges...))
		logrus.Infof("in-loop platoon formation enabled (%s)", platoonCfgPath)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := controller.Run(ctx, steps); err != nil {
		// Run closes the simulator connection on failure.
		return err
	}
	logrus.Infof("run %q recorded as %s", name, runSink.RunID)
	return client.Close()
}

func scenarioName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func init() {
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "Scenario .sumocfg to run")
	runCmd.Flags().BoolVar(&runGUI, "gui", false, "Run with the SUMO GUI")
	runCmd.Flags().IntVar(&runSteps, "steps", 0, "Number of simulation steps (default: sim_time from config)")
	runCmd.Flags().BoolVar(&runFixedTime, "fixed-time", false, "Disable green extension; pure fixed-time baseline")
	runCmd.Flags().StringVar(&runMetricsName, "metrics-file", "simulation_metrics.csv", "Metrics CSV filename inside the output dir")
	runCmd.Flags().StringVar(&runPlatoonCfg, "platoon-config", "", "Platooning config XML; enables in-loop platoon formation on the main road")

	rootCmd.AddCommand(runCmd)
}
