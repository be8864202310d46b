package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberworks/rekindle/internal/scoring"
)

var (
	dormantMinDays int
	dormantMinSent int
	dormantLimit   int
)

var dormantCmd = &cobra.Command{
	Use:   "dormant",
	Short: "List relationships that have gone quiet, ranked by prior closeness",
	RunE:  runDormant,
}

func init() {
	dormantCmd.Flags().IntVar(&dormantMinDays, "min-days", 0, "minimum days since last contact (default from config)")
	dormantCmd.Flags().IntVar(&dormantMinSent, "min-sent", 0, "minimum lifetime sent records (default from config)")
	dormantCmd.Flags().IntVar(&dormantLimit, "limit", 0, "maximum results (default from config)")
}

func runDormant(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := scoring.RankOpts{
		MinDaysSince: cfg.Dormant.MinDaysSince,
		MinTotalSent: cfg.Dormant.MinTotalSent,
		Limit:        cfg.Dormant.Limit,
	}
	if dormantMinDays > 0 {
		opts.MinDaysSince = dormantMinDays
	}
	if dormantMinSent > 0 {
		opts.MinTotalSent = dormantMinSent
	}
	if dormantLimit > 0 {
		opts.Limit = dormantLimit
	}

	results, err := scoring.RankDormant(db, time.Now(), opts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no dormant relationships found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKEY\tQUIET (DAYS)\tSENT\tSCORE\tLAST SUBJECT")
	for _, d := range results {
		name := d.DisplayName
		if name == "" {
			name = d.CounterpartKey
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			name, d.CounterpartKey, d.DaysSinceLast, d.TotalSent, d.HealthScore, d.LastSubject)
	}
	return tw.Flush()
}
