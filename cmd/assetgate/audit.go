package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/config"
	"github.com/sagarc03/assetgate/database"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect recorded downloads",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent downloads from the audit database",
	Long: `List recent downloads, newest first. Requires audit.backend to be
sqlite or postgres.

Examples:
  assetgate audit list --subject ci --limit 20
  assetgate audit list --file report.csv --json`,
	Args: cobra.NoArgs,
	RunE: runAuditList,
}

var (
	auditSubject string
	auditFile    string
	auditLimit   int
	auditJSON    bool
)

func init() {
	auditListCmd.Flags().StringVar(&auditSubject, "subject", "", "only downloads by this key id or token subject")
	auditListCmd.Flags().StringVar(&auditFile, "file", "", "only downloads of this file")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", assetgate.DefaultAuditLimit, "maximum number of events")
	auditListCmd.Flags().BoolVar(&auditJSON, "json", false, "print JSON instead of a table")

	auditCmd.AddCommand(auditListCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	dbCfg, ok := cfg.AuditDatabase()
	if !ok {
		return fmt.Errorf("audit backend %q does not store events", cfg.Audit.Backend)
	}

	repo, closeDB, err := database.Connect(cmd.Context(), dbCfg)
	if err != nil {
		return fmt.Errorf("connect audit database: %w", err)
	}
	defer closeDB()

	query := assetgate.AuditQuery{
		Subject:  auditSubject,
		FileName: auditFile,
		Limit:    auditLimit,
	}

	events, err := repo.List(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("list audit events: %w", err)
	}

	out := cmd.OutOrStdout()
	if auditJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tSUBJECT\tMETHOD\tCLIENT\tFILE\tSIZE\tCORRELATION")
	for _, e := range events {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			e.OccurredAt.Format(time.RFC3339),
			e.Subject,
			e.AuthMethod,
			e.ClientIP,
			e.FileName,
			e.SizeBytes,
			e.CorrelationID,
		)
	}
	return w.Flush()
}
