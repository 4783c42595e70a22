// Package cmd - band file commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sms-cost/adapters/bandfile"
	"sms-cost/adapters/storage/sqlstore"
	"sms-cost/core/types"
	"sms-cost/internal/config"
	"sms-cost/internal/logging"
)

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Validate, show and import price bands",
}

var bandsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a band file for gaps, overlaps and bad prices",
	Args:  cobra.ExactArgs(1),
	RunE:  runBandsValidate,
}

var bandsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the bands the configured source returns for a subject",
	Args:  cobra.NoArgs,
	RunE:  runBandsShow,
}

var bandsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a band file into the database",
	Long: `Replace the database's band sets with the ones in a band file.

The file's default bands become the fallback set; each subject block
replaces that subject's bands. Subjects not named in the file are left
untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runBandsImport,
}

var bandsSubject string

func init() {
	rootCmd.AddCommand(bandsCmd)
	bandsCmd.AddCommand(bandsValidateCmd)
	bandsCmd.AddCommand(bandsShowCmd)
	bandsCmd.AddCommand(bandsImportCmd)

	bandsShowCmd.Flags().StringVarP(&bandsSubject, "subject", "s", "", "subject id [REQUIRED]")
	bandsShowCmd.MarkFlagRequired("subject")
}

func runBandsValidate(cmd *cobra.Command, args []string) error {
	src, err := bandfile.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok (%d default bands, %d subjects)\n", src.Path(), len(src.Default()), src.Subjects())
	if def := src.Default(); def != nil {
		fmt.Fprintln(out)
		return renderBands(out, def)
	}
	return nil
}

func runBandsShow(cmd *cobra.Command, args []string) error {
	subject, err := types.ParseSubject(bandsSubject)
	if err != nil {
		return err
	}

	ctx := context.Background()
	backends, err := openBackends(ctx)
	if err != nil {
		return err
	}
	defer backends.Close()

	bands, err := backends.Bands.BandsFor(ctx, subject)
	if err != nil {
		return err
	}
	return renderBands(cmd.OutOrStdout(), bands)
}

func runBandsImport(cmd *cobra.Command, args []string) error {
	src, err := bandfile.Load(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := sqlstore.Open(ctx, config.Get().Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	imported := 0
	if def := src.Default(); def != nil {
		if err := store.PutBands(ctx, sqlstore.DefaultSubject, def); err != nil {
			return err
		}
		imported++
	}
	for _, id := range src.SubjectIDs() {
		bands, err := src.BandsFor(ctx, id)
		if err != nil {
			return err
		}
		if err := store.PutBands(ctx, id, bands); err != nil {
			return err
		}
		imported++
	}

	logging.Info("imported price bands",
		zap.String("file", src.Path()),
		zap.Int("band_sets", imported))

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d band sets from %s\n", imported, src.Path())
	return nil
}
