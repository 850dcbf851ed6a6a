package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchOutput  string
	batchRate    float64
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <claims.yaml>",
	Short: "Triage many claims from a file in parallel",
	Long: `Batch reads a YAML list of claims and runs each through the pipeline
with a bounded worker pool. Alerts are written as a JSON array in input
order; a summary goes to stderr.

Input format:
  - claim: "Cyclone has been upgraded to Category 4."
    source: "Messaging Apps"
  - claim: "Government is hiding the real cyclone path!"
    source: "Anonymous Forum"

Example:
  rumorguard batch claims.yaml
  rumorguard batch claims.yaml --concurrency 4 --output alerts.json
  rumorguard batch claims.yaml --rate 2   # stay under a model API quota`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "write alerts JSON to file instead of stdout")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "max claims started per second (0 = unlimited)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}

	c, err := buildComponents(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  RumorGuard Batch Triage\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Threshold:    %.1f\n", c.processor.Threshold())
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if batchRate > 0 {
		fmt.Fprintf(os.Stderr, "  Rate:         %.2f claims/s\n", batchRate)
	}
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(c.processor, concurrency)
	processor.SetRateLimit(batchRate, 1)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	alerts := make([]model.Alert, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %q: %v\n", r.Claim.Text, r.Error)
			continue
		}
		alerts = append(alerts, *r.Alert)
	}

	if err := writeAlerts(cmd, alerts); err != nil {
		return err
	}

	summary := worker.Summarize(results)
	printSummary(summary)

	if summary.Skipped > 0 {
		return fmt.Errorf("%d claims not processed", summary.Skipped)
	}
	return nil
}

func writeAlerts(cmd *cobra.Command, alerts []model.Alert) error {
	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	data = append(data, '\n')

	if batchOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(batchOutput, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", batchOutput, err)
	}
	return nil
}

func printSummary(s worker.Summary) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d claims\n", s.Total)
	fmt.Fprintf(os.Stderr, "  Escalated:  %d\n", s.Escalated)
	fmt.Fprintf(os.Stderr, "  Skipped:    %d\n", s.Skipped)

	statuses := make([]string, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(os.Stderr, "  %-11s %d\n", status+":", s.ByStatus[model.Status(status)])
	}
	fmt.Fprintf(os.Stderr, "\n")
}
