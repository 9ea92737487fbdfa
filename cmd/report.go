package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Jones-Shaun/platoon-sumo/sim"
	"github.com/Jones-Shaun/platoon-sumo/sim/report"
	"github.com/Jones-Shaun/platoon-sumo/sim/store"
)

var (
	reportCSV   string // metrics CSV to report on
	reportDB    string // metrics database to report on
	reportRunID string // run to select from the database
	reportHTML  string // chart output path; empty = summary table only
	reportTitle string
)

// reportCmd summarizes a recorded run and optionally renders charts.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a recorded run and render HTML charts",
	Run: func(cmd *cobra.Command, args []string) {
		rows, title := loadRows()
		if reportTitle != "" {
			title = reportTitle
		}

		if err := report.WriteSummaries(os.Stdout, report.Summarize(rows)); err != nil {
			logrus.Fatalf("writing summary: %v", err)
		}

		if reportHTML != "" {
			if err := report.RenderHTML(reportHTML, title, rows); err != nil {
				logrus.Fatalf("rendering charts: %v", err)
			}
			logrus.Infof("charts written to %s", reportHTML)
		}
	},
}

func loadRows() ([]sim.MetricsRow, string) {
	switch {
	case reportCSV != "":
		rows, err := report.ReadCSV(reportCSV)
		if err != nil {
			logrus.Fatalf("reading metrics: %v", err)
		}
		return rows, reportCSV
	case reportDB != "":
		db, err := store.Open(reportDB)
		if err != nil {
			logrus.Fatalf("opening metrics database: %v", err)
		}
		defer func() { _ = db.Close() }()

		runID := reportRunID
		scenarioName := runID
		if runID == "" {
			runs, err := db.Runs()
			if err != nil {
				logrus.Fatalf("listing runs: %v", err)
			}
			if len(runs) == 0 {
				logrus.Fatal("metrics database has no recorded runs")
			}
			runID = runs[0].RunID
			scenarioName = runs[0].Scenario
			logrus.Infof("defaulting to latest run %s (%s)", runID, scenarioName)
		}
		rows, err := db.Rows(runID)
		if err != nil {
			logrus.Fatalf("reading run %s: %v", runID, err)
		}
		return rows, scenarioName
	default:
		logrus.Fatal("either --csv or --db is required")
		return nil, ""
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "Metrics CSV written by a run")
	reportCmd.Flags().StringVar(&reportDB, "db", "", "Metrics SQLite database written by a run")
	reportCmd.Flags().StringVar(&reportRunID, "run", "", "Run ID inside the database (default: latest)")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "Write HTML charts to this path")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Chart page title (default: scenario or file name)")

	rootCmd.AddCommand(reportCmd)
}
