package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blessandsoul/project-x-sub001/internal/offer"
	"github.com/blessandsoul/project-x-sub001/internal/rates"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  "Creates the offers tables, and with the postgres driver also the vehicle_facts and provider_rates tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if pg, ok := st.(*offer.PostgresStore); ok {
			if err := rates.NewPostgresSource(pg.Pool()).Migrate(ctx); err != nil {
				return err
			}
		}

		fmt.Println("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
