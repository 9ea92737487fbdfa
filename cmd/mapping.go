package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jones-Shaun/platoon-sumo/sim"
	"github.com/Jones-Shaun/platoon-sumo/sim/traci"
)

var (
	mappingScenario string // sumocfg to load the network from
	mappingOutput   string // output JSON path
)

// mappingCmd runs a very short simulator session, queries every traffic
// light's controlled links, and records which control index governs which
// incoming lane and edge. The coordination loop consumes the result; it is
// produced once per network.
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Generate the signal-to-lane mapping artifact for a network",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := traci.Start(traci.StartOptions{Binary: "sumo", Config: mappingScenario})
		if err != nil {
			logrus.Fatalf("starting simulator: %v", err)
		}

		m, err := sim.BuildSignalMap(client)
		if err != nil {
			_ = client.Close()
			logrus.Fatalf("building mapping: %v", err)
		}
		if err := client.Close(); err != nil {
			logrus.Warnf("closing simulator: %v", err)
		}

		if err := m.Save(mappingOutput); err != nil {
			logrus.Fatalf("writing mapping: %v", err)
		}
		logrus.Infof("saved mapping for %d traffic lights to %s", len(m), mappingOutput)
	},
}

func init() {
	mappingCmd.Flags().StringVar(&mappingScenario, "scenario", "osm/osm.sumocfg", "Scenario .sumocfg to load the network from")
	mappingCmd.Flags().StringVar(&mappingOutput, "output", "traffic_signal_mapping.json", "Output JSON filename")

	rootCmd.AddCommand(mappingCmd)
}
