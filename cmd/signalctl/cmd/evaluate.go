package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"example.com/cost-signal/backend/internal/models"
	"example.com/cost-signal/backend/internal/signals"
)

var (
	evalType     string
	evalCurrent  float64
	evalPrevious float64
	evalHistory  []float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Apply an indicator rule offline",
	Long: `Apply an indicator rule to values given on the command line.

--history lists earlier weekly values, newest first; each value's previous
is the next one in the list.

Examples:
  signalctl evaluate --type gas --current 3.80 --previous 3.50
  signalctl evaluate --type cpi --current 310.2 --previous 310.0 --history 310.0,309.1,308.5,308.0`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalType, "type", "", "gas, cpi, interest_rate or unemployment")
	evaluateCmd.Flags().Float64Var(&evalCurrent, "current", 0, "current value")
	evaluateCmd.Flags().Float64Var(&evalPrevious, "previous", 0, "previous value")
	evaluateCmd.Flags().Float64SliceVar(&evalHistory, "history", nil, "earlier values, newest first")
	_ = evaluateCmd.MarkFlagRequired("type")
	_ = evaluateCmd.MarkFlagRequired("current")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	indicator, ok := models.ParseIndicatorType(strings.ToLower(strings.TrimSpace(evalType)))
	if !ok {
		return fmt.Errorf("unknown indicator type %q", evalType)
	}

	var previous *float64
	if cmd.Flags().Changed("previous") {
		value := evalPrevious
		previous = &value
	}

	recent := historyReadings(indicator, evalHistory)
	status := signals.Evaluate(indicator, evalCurrent, previous, recent)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", signals.IndicatorLabel(indicator), statusLabel(status))
	if change := models.ChangePercent(evalCurrent, previous); change != nil {
		fmt.Fprintf(out, "change: %+.2f%%\n", *change)
	}
	if len(recent) > 0 {
		window := signals.TrendWindow(indicator)
		fmt.Fprintf(out, "increases in last %d weeks: %d\n", window, signals.ConsecutiveIncreases(recent, window))
	}

	return nil
}

// historyReadings превращает ряд значений (новые первыми) в показания с previous_value.
func historyReadings(indicator models.IndicatorType, values []float64) []models.IndicatorReading {
	readings := make([]models.IndicatorReading, 0, len(values))
	for i, value := range values {
		reading := models.IndicatorReading{IndicatorType: indicator, Value: value}
		if i+1 < len(values) {
			previous := values[i+1]
			reading.PreviousValue = &previous
		}
		readings = append(readings, reading)
	}
	return readings
}
