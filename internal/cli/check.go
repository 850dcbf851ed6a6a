package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/rumorguard/internal/model"
	"github.com/ppiankov/rumorguard/internal/score"
)

var (
	checkSource  string
	checkTimeout time.Duration
	checkExplain bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Score and, if risky, fact-check a single claim",
	Long: `Check runs one claim through the same pipeline as the intake route
and prints the resulting alert as JSON. Nothing is stored.

Example:
  rumorguard check "Government is hiding the real cyclone path!"
  rumorguard check "Schools closed tomorrow" --source "District Office" --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkSource, "source", "cli", "claimed origin of the text")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")
	checkCmd.Flags().BoolVar(&checkExplain, "explain", false, "print the scoring breakdown to stderr")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(args[0])
	if text == "" {
		return fmt.Errorf("claim text is empty")
	}

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

	if checkExplain {
		a := score.NewScorer().Assess(text)
		fmt.Fprintf(os.Stderr, "risk %.1f (threshold %.1f)\n", a.Risk.Float(), c.processor.Threshold())
		for _, s := range a.Signals {
			fmt.Fprintf(os.Stderr, "  %-12s %+.1f  %q\n", s.Type, s.Delta, s.Match)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	alert := c.processor.Process(ctx, model.Claim{Text: text, Source: strings.TrimSpace(checkSource)})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(alert); err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	if alert.Status == model.StatusError {
		return fmt.Errorf("verification failed: %s", alert.Explanation)
	}
	return nil
}
