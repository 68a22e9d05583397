package cmd

import (
	"pubctl/internal/prompt"
	"pubctl/internal/publish"

	"github.com/spf13/cobra"
)

// publishRollbackCmd removes a channel entry, reverting the channel to the
// previous publication when the entry is the live one
var publishRollbackCmd = &cobra.Command{
	Use:     "publish:rollback [project-dir]",
	Aliases: []string{"pr"},
	Short:   "Rollback an update to a channel",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channelID, _ := cmd.Flags().GetString("channel-id")
		req := publish.RollbackRequest{ChannelID: channelID, NonInteractive: nonInteractive}
		if err := req.Validate(); err != nil {
			return err
		}

		s, err := newSession(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()
		history := publish.NewHistoryClient(s.project, s.client, s.client, AppConfig.LegacyAPI)
		confirmer := &prompt.RollbackConfirmer{
			Details:  history,
			Renderer: s.printer,
			Asker:    newAsker(cmd),
		}
		engine := publish.NewEngine(history, confirmer, s.mutator(), s.printer, s.logger)

		result, err := engine.Rollback(cmd.Context(), req)
		if err != nil {
			if result != nil && result.Reverted {
				s.logger.Warn("channel %s now serves publication %s but entry %s was not rolled back",
					result.Channel, result.Target.PublicationID, result.ChannelID)
			}
			return err
		}

		if err := s.printer.StatusTable("Channel Rollback Status ", "SUCCESS", result.RollbackAck); err != nil {
			return err
		}

		if err := s.notifier.SendRollback(result.Channel, result.ChannelID, result.Target.PublicationID, result.Reverted); err != nil {
			s.logger.Warn("failed to send rollback notification: %v", err)
		}
		return nil
	},
}

func init() {
	publishRollbackCmd.Flags().String("channel-id", "", "The channel id to rollback in the channel. (Required)")

	rootCmd.AddCommand(publishRollbackCmd)
}
