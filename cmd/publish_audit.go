package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// publishAuditCmd lists the channel writes recorded on this machine
var publishAuditCmd = &cobra.Command{
	Use:     "publish:audit [project-dir]",
	Aliases: []string{"pa"},
	Short:   "View the channel changes made from this machine",
	Long: `List the publish:set and publish:rollback writes pubctl has issued for
the project, newest first. Requires AUDIT_ENABLED.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		raw, _ := cmd.Flags().GetBool("raw")
		if count < 1 {
			return fmt.Errorf("count must be at least 1, got %d", count)
		}

		s, err := newSession(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()
		if s.audit == nil {
			return fmt.Errorf("the audit log is disabled; set AUDIT_ENABLED=true to record channel changes")
		}

		actions, err := s.audit.List(cmd.Context(), s.project.Slug(), count)
		if err != nil {
			return err
		}
		return s.printer.Actions(actions, raw)
	},
}

func init() {
	publishAuditCmd.Flags().IntP("count", "n", 20, "Number of entries to view")
	publishAuditCmd.Flags().BoolP("raw", "r", false, "Produce some raw output")

	rootCmd.AddCommand(publishAuditCmd)
}
