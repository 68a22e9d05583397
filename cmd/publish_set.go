package cmd

import (
	"pubctl/internal/publish"

	"github.com/spf13/cobra"
)

// publishSetCmd points a release channel at a publication
var publishSetCmd = &cobra.Command{
	Use:     "publish:set [project-dir]",
	Aliases: []string{"ps"},
	Short:   "Set a published release to be served from a specified channel",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		channel, _ := cmd.Flags().GetString("release-channel")
		publishID, _ := cmd.Flags().GetString("publish-id")
		req := publish.SetRequest{ReleaseChannel: channel, PublishID: publishID}
		if err := req.Validate(); err != nil {
			return err
		}

		s, err := newSession(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()
		mutator := s.mutator()

		ack, err := mutator.SetChannelToPublication(cmd.Context(), req.ReleaseChannel, req.PublishID)
		if err != nil {
			return err
		}
		if err := s.printer.StatusTable("Channel Set Status ", "SUCCESS", ack); err != nil {
			return err
		}

		if err := s.notifier.SendChannelSet(req.ReleaseChannel, req.PublishID); err != nil {
			s.logger.Warn("failed to send channel set notification: %v", err)
		}
		return nil
	},
}

func init() {
	publishSetCmd.Flags().StringP("release-channel", "c", "", "The channel to set the published release. (Required)")
	publishSetCmd.Flags().StringP("publish-id", "p", "", "The id of the published release to serve from the channel. (Required)")

	rootCmd.AddCommand(publishSetCmd)
}
