// Package cmd - cost command
package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"sms-cost/core/types"
	"sms-cost/internal/config"
	"sms-cost/internal/logging"
)

var (
	costSubject string
	costPeriod  string
	costFormat  string
)

// costCmd computes a subject's statement from the configured sources
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Compute a subject's cost for a month",
	Long: `Look up a subject's usage and price bands through the configured
sources and print the resulting cost statement.

Examples:
  sms-cost cost --subject fb908c44-7af1-4894-a0a5-860338468dfa --period 2024-03
  sms-cost --config prod.yaml cost --subject fb908c44-7af1-4894-a0a5-860338468dfa --format json`,
	Args: cobra.NoArgs,
	RunE: runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)

	costCmd.Flags().StringVarP(&costSubject, "subject", "s", "", "subject id [REQUIRED]")
	costCmd.Flags().StringVarP(&costPeriod, "period", "p", "", "billing period YYYY-MM (default is the current month)")
	costCmd.Flags().StringVarP(&costFormat, "format", "f", formatText, "output format (text, json)")
	costCmd.MarkFlagRequired("subject")
}

func parsePeriodFlag(raw string) (types.Period, error) {
	if raw == "" {
		return types.PeriodOf(time.Now().UTC()), nil
	}
	return types.ParsePeriod(raw)
}

func runCost(cmd *cobra.Command, args []string) error {
	if err := checkFormat(costFormat); err != nil {
		return err
	}

	subject, err := types.ParseSubject(costSubject)
	if err != nil {
		return err
	}
	period, err := parsePeriodFlag(costPeriod)
	if err != nil {
		return err
	}

	ctx := context.Background()
	backends, err := openBackends(ctx)
	if err != nil {
		return err
	}
	defer backends.Close()

	stmt, err := backends.Service(config.Get(), logging.Logger).CostFor(ctx, subject, period)
	if err != nil {
		return err
	}

	if costFormat == formatJSON {
		return writeJSON(cmd.OutOrStdout(), stmt)
	}
	return renderStatement(cmd.OutOrStdout(), stmt)
}
