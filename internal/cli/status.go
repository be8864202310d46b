package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show processing status for each run type",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		checkpoints, err := db.LatestCheckpoints()
		if err != nil {
			return err
		}
		if len(checkpoints) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN TYPE\tSTATUS\tRECORDS\tSTARTED\tENDED\tNOTE")
		for _, c := range checkpoints {
			ended := "-"
			if c.EndedAt != nil {
				ended = time.UnixMilli(*c.EndedAt).Format(time.RFC3339)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				c.RunType, c.Status, c.RecordsProcessed,
				time.UnixMilli(c.StartedAt).Format(time.RFC3339), ended, c.Message)
		}
		return tw.Flush()
	},
}
