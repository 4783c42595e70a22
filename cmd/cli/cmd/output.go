// Package cmd - output helpers
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"sms-cost/core/types"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unsupported format %q (use text or json)", format)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// renderStatement prints a statement as a band-by-band table
func renderStatement(w io.Writer, stmt *types.Statement) error {
	fmt.Fprintf(w, "Subject:  %s\n", stmt.Subject)
	fmt.Fprintf(w, "Period:   %s\n", stmt.Period)
	fmt.Fprintf(w, "Quantity: %d\n\n", stmt.Quantity)
	return renderCharges(w, stmt.Charges, stmt.Total.StringFixed(2)+" "+stmt.Currency.String())
}

func renderCharges(w io.Writer, charges []types.BandCharge, total string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BAND\tUNITS\tUNIT PRICE\tAMOUNT\t")
	for _, c := range charges {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", bandRange(c.Band), c.Units, c.Band.UnitPrice.String(), c.Amount.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\t\n", total)
	return tw.Flush()
}

func renderBands(w io.Writer, bands []types.PriceBand) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "BAND\tUNIT PRICE\t")
	for _, b := range bands {
		fmt.Fprintf(tw, "%s\t%s\t\n", bandRange(b), b.UnitPrice.String())
	}
	return tw.Flush()
}

func bandRange(b types.PriceBand) string {
	if b.IsUnbounded() {
		return fmt.Sprintf("%d+", b.QuantityFrom)
	}
	return fmt.Sprintf("%d-%d", b.QuantityFrom, b.QuantityTo)
}
