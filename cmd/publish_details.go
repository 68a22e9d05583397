package cmd

import (
	"pubctl/internal/publish"

	"github.com/spf13/cobra"
)

// publishDetailsCmd shows one publication
var publishDetailsCmd = &cobra.Command{
	Use:     "publish:details [project-dir]",
	Aliases: []string{"pd"},
	Short:   "View the details of a published release",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		publishID, _ := cmd.Flags().GetString("publish-id")
		raw, _ := cmd.Flags().GetBool("raw")
		if publishID == "" {
			return publish.InvalidArgument("you must specify a publish id. You can find ids using publish:history")
		}

		s, err := newSession(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()
		history := publish.NewHistoryClient(s.project, s.client, s.client, AppConfig.LegacyAPI)

		detail, err := history.FetchPublicationDetail(cmd.Context(), publishID)
		if err != nil {
			return err
		}
		return s.printer.PublicationDetail(detail, raw)
	},
}

func init() {
	publishDetailsCmd.Flags().String("publish-id", "", "Publication id. (Required)")
	publishDetailsCmd.Flags().BoolP("raw", "r", false, "Produce some raw output")

	rootCmd.AddCommand(publishDetailsCmd)
}
