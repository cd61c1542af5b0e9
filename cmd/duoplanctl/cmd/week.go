package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/duoplan/internal/week"
)

func WeekCmd() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "week [YYYY-MM-DD]",
		Short: "Print the ISO week id of a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if len(args) == 1 {
				parsed, err := time.Parse(time.DateOnly, args[0])
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
				day = parsed
			}

			id, err := week.Offset(week.Of(day), offset)
			if err != nil {
				return err
			}
			start, err := week.Start(id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (starts %s)\n", id, start.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "weeks to move forward (negative for back)")
	return cmd
}
