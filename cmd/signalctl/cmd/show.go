package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/repository"
)

var showWeeks int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print recent weekly signals",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVarP(&showWeeks, "weeks", "n", 8, "number of weeks")
}

func runShow(cmd *cobra.Command, _ []string) error {
	if showWeeks <= 0 {
		return fmt.Errorf("--weeks must be positive")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := openEnv(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()

	items, err := repository.NewSignalRepository(e.db).ListRecent(ctx, showWeeks)
	if err != nil {
		return err
	}

	printSignals(cmd.OutOrStdout(), items)
	return nil
}

func printSignals(out io.Writer, items []models.WeeklySignal) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No signals yet.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEK\tSTATUS\tRISKS\tEXPLANATION")
	for _, item := range items {
		explanation := ""
		if item.Explanation != nil {
			explanation = *item.Explanation
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", item.WeekStart.Format(dateLayout), item.OverallStatus, item.RiskCount, explanation)
	}
	_ = tw.Flush()
}
