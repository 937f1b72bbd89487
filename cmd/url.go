package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phishscope/phishscope/internal/utils"
	"github.com/phishscope/phishscope/pkg/report"
	"github.com/phishscope/phishscope/pkg/scan"
)

// urlCmd represents the url command
var urlCmd = &cobra.Command{
	Use:   "url <target>",
	Short: "Scan a single URL",
	Long:  "Submits one URL to the classifier and prints the normalized verdict.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := newSession()
		defer sess.End()

		d := newDispatcher(sess)
		s := d.ScanURL(context.Background(), args[0])
		sess.History.Append(s)

		printScan(s)

		if exportFlag, _ := cmd.Flags().GetBool("report"); exportFlag {
			return exportSingle(s, "url")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
	urlCmd.Flags().BoolP("report", "r", false, "Export the result as an HTML report")
}

func printScan(s scan.Scan) {
	if s.Status == scan.StatusError {
		fmt.Printf("Error: %s\n", s.ErrorMessage)
		return
	}
	fmt.Printf("Verdict:    %s\n", s.Verdict)
	fmt.Printf("Risk:       %s\n", s.RiskLevel)
	fmt.Printf("Confidence: %.1f%%\n", s.Confidence*100)
	for _, w := range s.Warnings {
		fmt.Printf("  ! %s\n", w)
	}
}

func exportSingle(s scan.Scan, reportType string) error {
	doc, err := report.Single(s)
	if err != nil {
		return err
	}
	name := report.Filename(reportType)
	if err := report.Write(name, doc); err != nil {
		return err
	}
	utils.Log.Info("report written to ", name)
	return nil
}
