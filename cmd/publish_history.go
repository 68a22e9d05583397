package cmd

import (
	"pubctl/internal/publish"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
)

// publishHistoryCmd lists the publish history of a project
var publishHistoryCmd = &cobra.Command{
	Use:     "publish:history [project-dir]",
	Aliases: []string{"ph"},
	Short:   "View a log of your published releases",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := historyQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")

		s, err := newSession(cmd, args)
		if err != nil {
			return err
		}
		defer s.Close()
		history := publish.NewHistoryClient(s.project, s.client, s.client, AppConfig.LegacyAPI)

		pubs, err := history.FetchHistory(cmd.Context(), query)
		if err != nil {
			return err
		}
		s.logger.Debug("fetched %d publications", len(pubs))
		return s.printer.History(pubs, raw)
	},
}

func historyQueryFromFlags(cmd *cobra.Command) (publish.HistoryQuery, error) {
	channel, _ := cmd.Flags().GetString("release-channel")
	count, _ := cmd.Flags().GetInt("count")
	platform, _ := cmd.Flags().GetString("platform")
	sdkVersion, _ := cmd.Flags().GetString("sdk-version")

	query := publish.HistoryQuery{
		ReleaseChannel: channel,
		Count:          count,
		SDKVersion:     sdkVersion,
	}
	if platform != "" {
		p, err := publish.ParsePlatform(platform)
		if err != nil {
			return query, err
		}
		query.Platform = p
	}
	if sdkVersion != "" {
		if _, err := semver.NewVersion(sdkVersion); err != nil {
			return query, publish.InvalidArgument("invalid sdk version %q: %v", sdkVersion, err)
		}
	}
	return query, query.Validate()
}

func init() {
	publishHistoryCmd.Flags().StringP("release-channel", "c", "", "Filter by release channel")
	publishHistoryCmd.Flags().IntP("count", "n", 5, "Number of logs to view, maximum 100")
	publishHistoryCmd.Flags().StringP("platform", "p", "", "Filter by platform, android or ios")
	publishHistoryCmd.Flags().StringP("sdk-version", "s", "", "Filter by SDK version e.g. 35.0.0")
	publishHistoryCmd.Flags().BoolP("raw", "r", false, "Produce some raw output")

	rootCmd.AddCommand(publishHistoryCmd)
}
