package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/duoplan/internal/app"
	"github.com/templui/duoplan/internal/db"
	"github.com/templui/duoplan/internal/service"
)

func MaintainCmd() *cobra.Command {
	var ownerID, weekID string

	maintain := &cobra.Command{
		Use:   "maintain",
		Short: "Run weekly reset and expiration for one owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			err = db.RunMigrations(database.DB, cfg.DBDriver)
			if err != nil {
				return err
			}

			a := app.NewWithDB(cfg, database, nil, service.SystemClock{Location: cfg.WeekLocation()})

			var report *service.MaintenanceReport
			if weekID == "" {
				report, err = a.GoalService.RunWeeklyMaintenanceNow(ownerID)
			} else {
				report, err = a.GoalService.RunWeeklyMaintenance(ownerID, weekID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "week %s: reset %d, archived %d, completed %d, expired %d\n",
				report.WeekID, report.Reset, report.Archived, report.Completed, report.Expired)
			return nil
		},
	}

	maintain.Flags().StringVar(&ownerID, "owner", "", "owner id to maintain")
	maintain.Flags().StringVar(&weekID, "week", "", "week id (YYYY-Www), defaults to the current week")
	_ = maintain.MarkFlagRequired("owner")

	return maintain
}
