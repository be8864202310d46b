package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberworks/rekindle/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute health scores for every relationship",
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

		n, err := scoring.Recompute(db, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("rescored %d relationships\n", n)
		return nil
	},
}
