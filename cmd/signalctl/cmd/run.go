package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/server"
	"example.com/cost-signal/backend/internal/signals"
)

var (
	runWeek       string
	recomputeWeek string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch indicators and compute a week",
	Long: `Fetch the four indicators and compute the weekly signal.

Examples:
  signalctl run                     # current week
  signalctl run --week 2024-03-11   # must not be a past week`,
	RunE: runRun,
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild a week's signal from stored readings",
	RunE:  runRecompute,
}

func init() {
	runCmd.Flags().StringVar(&runWeek, "week", "", "week start YYYY-MM-DD (default current week)")
	recomputeCmd.Flags().StringVar(&recomputeWeek, "week", "", "week start YYYY-MM-DD")
	_ = recomputeCmd.MarkFlagRequired("week")
}

func runRun(cmd *cobra.Command, _ []string) error {
	return withService(cmd, func(ctx context.Context, service *signals.Service) (signals.WeekResult, error) {
		week := service.CurrentWeek()
		if runWeek != "" {
			parsed, err := parseWeekFlag(runWeek)
			if err != nil {
				return signals.WeekResult{}, err
			}
			week = parsed
		}
		return service.RunWeek(ctx, week)
	})
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	week, err := parseWeekFlag(recomputeWeek)
	if err != nil {
		return err
	}

	return withService(cmd, func(ctx context.Context, service *signals.Service) (signals.WeekResult, error) {
		return service.Recompute(ctx, week)
	})
}

func withService(cmd *cobra.Command, fn func(ctx context.Context, service *signals.Service) (signals.WeekResult, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := openEnv(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Scheduler.RunTimeout)
	defer cancel()

	service := server.NewSignalService(e.cfg, e.logger, e.db, nil)
	result, err := fn(ctx, service)
	if err != nil {
		return err
	}

	printWeekResult(cmd.OutOrStdout(), result)
	return nil
}

func printWeekResult(out io.Writer, result signals.WeekResult) {
	fmt.Fprintf(out, "Week %s: %s (%d at risk)\n",
		result.Signal.WeekStart.Format(dateLayout),
		result.Signal.OverallStatus,
		result.Signal.RiskCount,
	)
	if result.Signal.Explanation != nil {
		fmt.Fprintf(out, "%s\n", *result.Signal.Explanation)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDICATOR\tVALUE\tPREVIOUS\tCHANGE\tSTATUS")
	for _, reading := range result.Readings {
		fmt.Fprintf(tw, "%s\t%.3f\t%s\t%s\t%s\n",
			signals.IndicatorLabel(reading.IndicatorType),
			reading.Value,
			formatOptional(reading.PreviousValue, "%.3f"),
			formatOptional(reading.ChangePercent, "%+.2f%%"),
			statusLabel(reading.Status),
		)
	}
	_ = tw.Flush()
}

func formatOptional(value *float64, format string) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf(format, *value)
}

func statusLabel(status models.IndicatorStatus) string {
	if status == models.StatusRisk {
		return "RISK"
	}
	return "ok"
}
