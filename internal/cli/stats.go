package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	analyticstransport "koppara_backend/internal/analytics/transport"

	"github.com/spf13/cobra"
)

var (
	statsBy    string
	statsLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the distributor leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		board, err := b.Leaderboard(cmd.Context(), analyticstransport.LeaderboardRequest{By: statsBy, Limit: statsLimit}, time.Now())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tCONTACTS\tCONVERSIONS\tRATE\tSLA\tREVENUE")
		for i, s := range board.Items {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.2f\t%.1f%%\t%s\n",
				i+1, s.Name, s.Contacts, s.Conversions, s.ConversionRate, s.SLAIndex, formatCents(s.RevenueCents))
		}
		return w.Flush()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.Migrate(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func init() {
	statsCmd.Flags().StringVar(&statsBy, "by", "revenue", "Ranking: revenue, conversions or sla")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "Number of rows")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(migrateCmd)
}
