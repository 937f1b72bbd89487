package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phishscope/phishscope/internal/utils"
	"github.com/phishscope/phishscope/pkg/scan"
	"github.com/phishscope/phishscope/pkg/session"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show your stored scan history",
	Long:  "Fetches stored scan records from the service and prints the most recent ones.",
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

		recent := sess.History.Recent(limit)
		if len(recent) == 0 {
			fmt.Println("No scans in history yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "DATE\tKIND\tTARGET\tVERDICT\tRISK\t")
		for _, s := range recent {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				s.ScannedAt.Format("2006-01-02 15:04"),
				s.Kind,
				utils.Truncate(s.Target, 50),
				verdictLabel(s),
				s.RiskLevel)
		}
		w.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 10, "Maximum records to fetch")
}

// seedHistory fills the session cache from fetched records. The service
// returns newest first; the cache is ordered by arrival, so records go in
// oldest first.
func seedHistory(sess *session.Session, scans []scan.Scan) {
	for i := len(scans) - 1; i >= 0; i-- {
		sess.History.Append(scans[i])
	}
}
