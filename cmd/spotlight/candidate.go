package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/classic-spotlight/internal/app"
	"github.com/iliyamo/classic-spotlight/internal/config"
	"github.com/iliyamo/classic-spotlight/internal/model"
)

var flagCandidateDate string

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Resolve the spotlight candidate for a day and print it as JSON",
	Long: `Resolve the spotlight candidate for a day, storing the decision on first use.

Without --date the current day in SPOTLIGHT_TIMEZONE is used.  Running it
again for the same day prints the stored decision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var day *model.Date
		if flagCandidateDate != "" {
			d, err := model.ParseDate(flagCandidateDate)
			if err != nil {
				return fmt.Errorf("invalid --date value: %w", err)
			}
			day = &d
		}

		cfg := config.Load()
		app.InitLogging(cfg)

		ctx := cmd.Context()
		db, err := app.OpenDatabase(ctx, cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		svc := app.NewEngine(cfg, db).Service
		res, err := svc.GetCandidate(ctx, day)
		svc.Wait()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	candidateCmd.Flags().StringVar(&flagCandidateDate, "date", "", "day to resolve (YYYY-MM-DD)")
}
