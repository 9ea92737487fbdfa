package cmd

import (
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jones-Shaun/platoon-sumo/sim"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Optional YAML run config path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "platoon-sumo",
	Short: "Platoon-aware traffic signal coordination for SUMO",
	Long: `platoon-sumo drives a SUMO microscopic traffic simulation over TraCI,
extends main-road green phases for approaching truck platoons, and records
per-tick traffic metrics for later comparison.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&easy.Formatter{
			TimestampFormat: "2006-01-02 15:04:05.0000",
			LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
		})
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// loadConfig resolves the run configuration: the built-in Fairfax County
// Parkway defaults, overridden by --config when given.
func loadConfig() sim.Config {
	if configPath == "" {
		return sim.DefaultConfig()
	}
	cfg, err := sim.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	return cfg
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML run config path (defaults to the built-in study setup)")
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
