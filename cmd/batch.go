package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phishscope/phishscope/internal/utils"
	"github.com/phishscope/phishscope/pkg/report"
	"github.com/phishscope/phishscope/pkg/scan"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [urls...]",
	Short: "Scan up to 50 URLs at once",
	Long: `Classifies a list of URLs, passed as arguments or one per line via
--file. Items fail independently; results keep the input order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := args
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			fromFile, err := readTargetFile(path)
			if err != nil {
				return err
			}
			targets = append(targets, fromFile...)
		}

		sess := newSession()
		defer sess.End()

		d := newDispatcher(sess)
		res, err := d.ScanBatch(context.Background(), targets)
		if err != nil {
			return err
		}
		sess.History.AppendAll(res.Results)

		printBatch(res)

		if exportFlag, _ := cmd.Flags().GetBool("report"); exportFlag {
			doc, err := report.Batch(res)
			if err != nil {
				return err
			}
			name := report.Filename("batch")
			if err := report.Write(name, doc); err != nil {
				return err
			}
			utils.Log.Info("report written to ", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringP("file", "f", "", "File with one URL per line")
	batchCmd.Flags().BoolP("report", "r", false, "Export the results as an HTML report")
}

func readTargetFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, scanner.Err()
}

func printBatch(res scan.BatchResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TARGET\tVERDICT\tRISK\tSCORE\t")
	for _, s := range res.Results {
		if s.Status == scan.StatusError {
			fmt.Fprintf(w, "%s\tError\tN/A\tN/A\t\n", utils.Truncate(s.Target, 60))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\t\n", utils.Truncate(s.Target, 60), s.Verdict, s.RiskLevel, s.Confidence*100)
	}
	w.Flush()
	fmt.Printf("\n%d/%d items classified\n", res.Processed, len(res.Results))
}
