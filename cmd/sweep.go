package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blessandsoul/project-x-sub001/internal/offer"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire offers past their validity window",
	Long:  "One-shot expiry sweep: marks pending and selected offers older than the validity window as expired. The serve command also runs this periodically.",
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

		svc := offer.NewService(st, time.Duration(cfg.Offers.ValidityDays)*24*time.Hour)
		n, err := svc.Expire(ctx, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("expired %d offer(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
