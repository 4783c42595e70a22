// Package cmd - usage commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sms-cost/core/types"
	"sms-cost/internal/config"
	"sms-cost/internal/logging"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Record and inspect usage",
}

var usageAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add units to a subject's usage for a month",
	Long: `Add units to a subject's usage total.

Requires a persistent usage source (redis or sql); the memory source does
not outlive the command.

Example:
  sms-cost usage add --subject fb908c44-7af1-4894-a0a5-860338468dfa --period 2024-03 --quantity 250`,
	Args: cobra.NoArgs,
	RunE: runUsageAdd,
}

var usageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a subject's usage for a month",
	Args:  cobra.NoArgs,
	RunE:  runUsageShow,
}

var (
	usageSubject  string
	usagePeriod   string
	usageQuantity int64
)

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageAddCmd)
	usageCmd.AddCommand(usageShowCmd)

	for _, c := range []*cobra.Command{usageAddCmd, usageShowCmd} {
		c.Flags().StringVarP(&usageSubject, "subject", "s", "", "subject id [REQUIRED]")
		c.Flags().StringVarP(&usagePeriod, "period", "p", "", "billing period YYYY-MM (default is the current month)")
		c.MarkFlagRequired("subject")
	}
	usageAddCmd.Flags().Int64VarP(&usageQuantity, "quantity", "q", 0, "units to add [REQUIRED]")
	usageAddCmd.MarkFlagRequired("quantity")
}

func runUsageAdd(cmd *cobra.Command, args []string) error {
	subject, err := types.ParseSubject(usageSubject)
	if err != nil {
		return err
	}
	period, err := parsePeriodFlag(usagePeriod)
	if err != nil {
		return err
	}

	cfg := config.Get()
	if cfg.Usage.Source == config.SourceMemory {
		logging.Warn("usage source is memory; the recorded usage will not persist")
	}

	ctx := context.Background()
	backends, err := openBackends(ctx)
	if err != nil {
		return err
	}
	defer backends.Close()

	svc := backends.Service(cfg, logging.Logger)
	err = svc.RecordUsage(ctx, types.UsageRecord{
		Subject:  subject,
		Period:   period,
		Quantity: usageQuantity,
	})
	if err != nil {
		return err
	}

	total, err := svc.Usage().QuantityFor(ctx, subject, period)
	if err != nil {
		return err
	}

	logging.Info("usage recorded",
		zap.String("subject", subject.String()),
		zap.String("period", period.String()),
		zap.Int64("added", usageQuantity))

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d units\n", subject, period, total)
	return nil
}

func runUsageShow(cmd *cobra.Command, args []string) error {
	subject, err := types.ParseSubject(usageSubject)
	if err != nil {
		return err
	}
	period, err := parsePeriodFlag(usagePeriod)
	if err != nil {
		return err
	}

	ctx := context.Background()
	backends, err := openBackends(ctx)
	if err != nil {
		return err
	}
	defer backends.Close()

	total, err := backends.Usage.QuantityFor(ctx, subject, period)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d units\n", subject, period, total)
	return nil
}
