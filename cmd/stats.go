package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishscope/phishscope/pkg/analytics"
	"github.com/phishscope/phishscope/pkg/scan"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints statistics derived from your stored scan history.",
	Long:  "Fetches your stored scan history and prints totals, verdict distribution, signal and warning frequency, daily activity and the 28-day streak.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		sess := newSession()
		defer sess.End()

		d := newDispatcher(sess)
		scans, err := d.FetchHistory(context.Background(), limit)
		if err != nil {
			return err
		}
		seedHistory(sess, scans)

		snapshot := sess.History.All()
		if len(snapshot) == 0 {
			fmt.Println("No scans in history yet. Try scanning a URL!")
			return nil
		}

		now := time.Now()
		printTotals(analytics.Overview(snapshot))
		printDistribution(analytics.RiskDistribution(snapshot))
		printFrequency("TOP SIGNALS", analytics.RankCounts(analytics.SignalFrequency(snapshot), 5))
		printFrequency("TOP WARNINGS", analytics.RankCounts(analytics.WarningFrequency(snapshot), 5))
		printFrequency("TOP RISKY DOMAINS", analytics.RiskyDomains(snapshot, 5))
		printActivity(analytics.DailyActivity(snapshot, now))
		printStreak(analytics.Streak(snapshot, now))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntP("limit", "n", 1000, "Maximum history records to fetch")
}

func printTotals(t analytics.Totals) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "TOTAL\tSAFE\tTHREATS\tRISK RATIO\t")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d%%\t\n", t.Total, t.Safe, t.Threats, t.RiskRatio)
	w.Flush()
	fmt.Println()
}

func printDistribution(buckets []analytics.Bucket) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "VERDICT\tCOUNT\t")
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%d\t\n", b.Label, b.Count)
	}
	w.Flush()
	fmt.Println()
}

func printFrequency(header string, buckets []analytics.Bucket) {
	if len(buckets) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "%s\tCOUNT\t\n", header)
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%d\t\n", b.Label, b.Count)
	}
	w.Flush()
	fmt.Println()
}

func printActivity(days []analytics.DayCount) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DAY\tSCANS\t")
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%d\t\n", d.Weekday, d.Count)
	}
	w.Flush()
	fmt.Println()
}

func printStreak(streak analytics.StreakWindow) {
	fmt.Printf("Activity streak %s to %s:\n", streak.From.Format("Jan 2"), streak.To.Format("Jan 2"))
	for _, active := range streak.Days {
		if active {
			fmt.Print("#")
		} else {
			fmt.Print(".")
		}
	}
	fmt.Println()
}

// verdictLabel renders a scan's verdict for tables, folding the error state
// into the same column the way dashboards display inline failures.
func verdictLabel(s scan.Scan) string {
	if s.Status == scan.StatusError {
		return "Error"
	}
	return string(s.Verdict)
}
