package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wedding-guestbook/internal/dedup"
	"wedding-guestbook/internal/engine"
)

func addKindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVar(kind, "kind", kindRSVP, "record kind (rsvp|message)")
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var kind string
	var reconcile bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the record set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(kind); err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if reconcile {
				a.rsvps.Reconcile(context.Background())
				a.messages.Reconcile(context.Background())
			}

			out := cmd.OutOrStdout()
			if kind == kindRSVP {
				for _, r := range a.rsvps.Records() {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
						r.LocalID, r.Name, r.Email, r.Attendance, r.ApprovalState())
				}
			} else {
				for _, m := range a.messages.Records() {
					fmt.Fprintf(out, "%d\t%s\t%d likes\t%s\n",
						m.LocalID, m.Name, m.Likes, m.Message)
				}
			}
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	cmd.Flags().BoolVar(&reconcile, "reconcile", false, "pull the remote store before listing")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var kind string
	var reconcile bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the record set as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(kind); err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if reconcile {
				a.rsvps.Reconcile(context.Background())
				a.messages.Reconcile(context.Background())
			}

			csv := a.rsvps.ExportCSV()
			if kind == kindMessage {
				csv = a.messages.ExportCSV()
			}
			fmt.Fprint(cmd.OutOrStdout(), csv)
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	cmd.Flags().BoolVar(&reconcile, "reconcile", false, "pull the remote store before exporting")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Load records from a CSV backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(kind); err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			var res engine.ImportResult
			if kind == kindRSVP {
				res, err = a.rsvps.ImportCSV(string(content))
			} else {
				res, err = a.messages.ImportCSV(string(content))
			}
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d, updated %d, skipped %d\n",
				res.Added, res.Updated, res.Skipped)
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	return cmd
}

// NewDiagnoseCommand creates the diagnose command.
func NewDiagnoseCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report duplicate identities without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(kind); err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			report := a.rsvps.Diagnose()
			if kind == kindMessage {
				report = a.messages.Diagnose()
			}
			printReport(cmd, report)
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	return cmd
}

func printReport(cmd *cobra.Command, report dedup.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d records, %d unique identities\n", report.Total, report.Unique)
	for _, group := range report.Groups {
		fmt.Fprintf(out, "  %s (%d copies)\n", group.Key, len(group.Members))
		for _, m := range group.Members {
			fmt.Fprintf(out, "    id=%d remote=%s updated=%s\n",
				m.LocalID, m.RemoteID, m.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}
}

// NewDedupCommand creates the dedup command.
func NewDedupCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Collapse duplicate identities, keeping the newest record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(kind); err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			var removed int
			if kind == kindRSVP {
				removed = a.rsvps.Dedup()
			} else {
				removed = a.messages.Dedup()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d duplicate records\n", removed)
			return nil
		},
	}

	addKindFlag(cmd, &kind)
	return cmd
}
