// Package cmd - compute command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sms-cost/adapters/bandfile"
	"sms-cost/api"
	"sms-cost/core/pricing"
	"sms-cost/core/types"
	"sms-cost/internal/logging"
)

var (
	computeBandFile string
	computeSubject  string
	computeQuantity int64
	computeFormat   string
)

// computeCmd prices a quantity against a band file
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Price a quantity against a band file",
	Long: `Compute the banded cost of a quantity.

Bands come from an HCL, YAML or JSON band file. The file's default bands are
used unless --subject names a subject with its own band set.

Examples:
  sms-cost compute --bands bands.hcl --quantity 1500
  sms-cost compute --bands bands.yaml --quantity 450 --format json`,
	Args: cobra.NoArgs,
	RunE: runCompute,
}

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringVarP(&computeBandFile, "bands", "b", "", "band file (.hcl, .yaml, .json) [REQUIRED]")
	computeCmd.Flags().StringVarP(&computeSubject, "subject", "s", "", "subject id whose bands to use")
	computeCmd.Flags().Int64VarP(&computeQuantity, "quantity", "q", 0, "quantity to price [REQUIRED]")
	computeCmd.Flags().StringVarP(&computeFormat, "format", "f", formatText, "output format (text, json)")
	computeCmd.MarkFlagRequired("bands")
	computeCmd.MarkFlagRequired("quantity")
}

func runCompute(cmd *cobra.Command, args []string) error {
	if err := checkFormat(computeFormat); err != nil {
		return err
	}
	if computeQuantity < 0 {
		return fmt.Errorf("quantity must not be negative: %d", computeQuantity)
	}

	src, err := bandfile.Load(computeBandFile)
	if err != nil {
		return err
	}

	bands := src.Default()
	if computeSubject != "" {
		subject, err := types.ParseSubject(computeSubject)
		if err != nil {
			return err
		}
		bands, err = src.BandsFor(context.Background(), subject)
		if err != nil {
			return err
		}
	} else if bands == nil {
		return fmt.Errorf("%s has no default bands; pass --subject", computeBandFile)
	}

	charges, total := pricing.NewCalculator().Price(computeQuantity, bands)

	logging.Debug("computed cost",
		zap.String("bands", src.String()),
		zap.Int64("quantity", computeQuantity),
		zap.String("total", total.String()))

	out := cmd.OutOrStdout()
	if computeFormat == formatJSON {
		return writeJSON(out, api.ComputeResponse{
			Quantity: computeQuantity,
			Total:    total,
			Charges:  charges,
		})
	}

	fmt.Fprintf(out, "Quantity: %d\n\n", computeQuantity)
	return renderCharges(out, charges, total.StringFixed(2))
}
