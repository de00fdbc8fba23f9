package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blessandsoul/project-x-sub001/internal/offer"
	"github.com/blessandsoul/project-x-sub001/internal/ratesheet"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage provider rate sheets",
}

var (
	ratesImportFile  string
	ratesImportURL   string
	ratesImportSheet string
)

var ratesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a provider rate sheet into provider_rates",
	Long:  "Parses an XLSX rate sheet from a local file or a provider FTP drop and bulk-upserts its shipping rules. Requires the postgres store driver.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if (ratesImportFile == "") == (ratesImportURL == "") {
			return eris.New("exactly one of --file or --url is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		pg, ok := st.(*offer.PostgresStore)
		if !ok {
			return eris.New("rates import requires store driver postgres")
		}

		path := ratesImportFile
		if ratesImportURL != "" {
			if err := os.MkdirAll(cfg.Ratesheet.TempDir, 0o755); err != nil {
				return eris.Wrap(err, "create temp dir")
			}
			fetcher := ratesheet.NewFetcher(time.Duration(cfg.Ratesheet.FTPTimeoutSecs) * time.Second)
			path, err = fetcher.FetchFile(ctx, ratesImportURL, cfg.Ratesheet.TempDir)
			if err != nil {
				return err
			}
			defer os.Remove(path)
		}

		rows, err := ratesheet.ParseFile(path, ratesheet.Options{SheetName: ratesImportSheet})
		if err != nil {
			return err
		}
		zap.L().Info("rate sheet parsed", zap.Int("rows", len(rows)))

		n, err := ratesheet.NewImporter(pg.Pool()).Import(ctx, rows)
		if err != nil {
			return err
		}

		fmt.Printf("imported %d rate row(s)\n", n)
		return nil
	},
}

func init() {
	ratesImportCmd.Flags().StringVar(&ratesImportFile, "file", "", "local XLSX rate sheet")
	ratesImportCmd.Flags().StringVar(&ratesImportURL, "url", "", "ftp:// URL of the rate sheet")
	ratesImportCmd.Flags().StringVar(&ratesImportSheet, "sheet", "", "sheet name (default first sheet)")
	ratesCmd.AddCommand(ratesImportCmd)
	rootCmd.AddCommand(ratesCmd)
}
