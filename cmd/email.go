package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/phishscope/phishscope/pkg/scan"
)

// emailCmd represents the email command
var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Scan a single email",
	Long: `Submits an email (subject, body, sender, reply-to) to the classifier.
Fields can be passed as flags or read from a JSON file with --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := emailFromFlags(cmd)
		if err != nil {
			return err
		}

		sess := newSession()
		defer sess.End()

		d := newDispatcher(sess)
		s := d.ScanEmail(context.Background(), email)
		sess.History.Append(s)

		printScan(s)

		if exportFlag, _ := cmd.Flags().GetBool("report"); exportFlag {
			return exportSingle(s, "email")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)
	emailCmd.Flags().StringP("subject", "s", "", "Email subject")
	emailCmd.Flags().StringP("body", "b", "", "Email body")
	emailCmd.Flags().StringP("from", "f", "", "Sender address")
	emailCmd.Flags().StringP("reply-to", "", "", "Reply-To address")
	emailCmd.Flags().StringP("file", "", "", "JSON file with subject/body/from/reply_to fields")
	emailCmd.Flags().BoolP("report", "r", false, "Export the result as an HTML report")
}

func emailFromFlags(cmd *cobra.Command) (scan.EmailTarget, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return scan.EmailTarget{}, err
		}
		var email scan.EmailTarget
		if err := json.Unmarshal(data, &email); err != nil {
			return scan.EmailTarget{}, err
		}
		return email, nil
	}

	subject, _ := cmd.Flags().GetString("subject")
	body, _ := cmd.Flags().GetString("body")
	from, _ := cmd.Flags().GetString("from")
	replyTo, _ := cmd.Flags().GetString("reply-to")

	if subject == "" && body == "" && from == "" {
		return scan.EmailTarget{}, errors.New("provide at least one of --subject, --body, --from (or --file)")
	}
	return scan.EmailTarget{Subject: subject, Body: body, From: from, ReplyTo: replyTo}, nil
}
