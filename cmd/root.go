package cmd

import (
	"fmt"
	"os"

	"pubctl/internal/api"
	"pubctl/internal/audit"
	"pubctl/internal/config"
	"pubctl/internal/logx"
	"pubctl/internal/notification"
	"pubctl/internal/output"
	"pubctl/internal/project"
	"pubctl/internal/prompt"
	"pubctl/internal/publish"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFilePath    string
	configPath     string
	nonInteractive bool
	AppConfig      *config.Config
)

// newAsker builds the confirmation prompt; replaced in tests
var newAsker = func(cmd *cobra.Command) prompt.Asker {
	asker := prompt.NewTerminalAsker()
	asker.In = cmd.InOrStdin()
	asker.Out = cmd.ErrOrStderr()
	return asker
}

var rootCmd = &cobra.Command{
	Use:   "pubctl",
	Short: "Inspect and roll back releases served from publish channels",
	Long: `pubctl manages the releases a project serves from its publish channels.

It can:
- list the publish history of a project, filtered by channel, platform and SDK version
- show the details and manifest of a single publication
- point a release channel at any earlier publication
- roll back the latest entry of a channel, restoring the previous publication

Credentials and the API endpoint are read from pubctl.yaml, the
environment (PUBCTL_ prefix) or an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Allow env file path to be set via ENV_FILE env var if not provided by flag
		if envFilePath == "" {
			envFilePath = os.Getenv("ENV_FILE")
		}

		if envFilePath != "" {
			if err := godotenv.Load(envFilePath); err != nil {
				return fmt.Errorf("error loading .env file from '%s': %w", envFilePath, err)
			}
		}

		// Allow config path to be set via CONFIG_PATH env var if not provided by flag
		if configPath == "" {
			configPath = os.Getenv("CONFIG_PATH")
		}

		cfg, err := config.LoadConfig(configPath, cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		AppConfig = cfg
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFilePath, "env-file", "e", "", "Path to the .env file (optional)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Fail instead of prompting for confirmation")
	rootCmd.PersistentFlags().String("api-url", "", "Publish API root (overrides API_URL)")
	rootCmd.PersistentFlags().Bool("legacy", false, "Read history through the legacy multipart API")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// session is everything a publish command needs, built from AppConfig and
// the project directory argument.
type session struct {
	logger   logx.Logger
	client   *api.Client
	project  *project.Project
	printer  *output.Printer
	notifier notification.Notifier

	// audit is nil unless AUDIT_ENABLED is set
	audit   *audit.DAO
	auditDB *audit.Database
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	if AppConfig == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	logger := logx.NewLogger(cmd.ErrOrStderr(), logx.ParseLevel(AppConfig.LogLevel))

	proj, err := project.Load(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded project %s from %s", proj.Slug(), proj.Path)

	client, err := api.NewClient(api.Options{
		BaseURL:       AppConfig.APIURL,
		LegacyBaseURL: AppConfig.LegacyAPIURL,
		Timeout:       AppConfig.Timeout(),
		Authenticator: &api.TokenAuthenticator{
			AccessToken:   AppConfig.AccessToken,
			SessionSecret: AppConfig.SessionSecret,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	notifier, err := notification.NewMulti(AppConfig.Notifications)
	if err != nil {
		return nil, err
	}

	s := &session{
		logger:   logger,
		client:   client,
		project:  proj,
		printer:  output.New(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		notifier: notifier,
	}

	if AppConfig.AuditEnabled {
		db, err := audit.NewDatabase(AppConfig.AuditDB)
		if err != nil {
			return nil, err
		}
		s.auditDB = db
		s.audit = audit.NewDAO(db)
		pruned, err := s.audit.Prune(cmd.Context(), AppConfig.AuditRetention())
		if err != nil {
			logger.Warn("failed to prune audit log: %v", err)
		} else {
			logger.Debug("audit log %s pruned: %v", db.Path(), pruned)
		}
	}
	return s, nil
}

// mutator returns the remote mutator, recording writes when auditing is on
func (s *session) mutator() publish.Mutator {
	var m publish.Mutator = publish.NewMutator(s.project, s.client)
	if s.audit != nil {
		m = audit.NewMutator(m, s.audit, s.project.Slug(), s.logger)
	}
	return m
}

func (s *session) Close() {
	if s.auditDB != nil {
		if err := s.auditDB.Close(); err != nil {
			s.logger.Warn("failed to close audit log: %v", err)
		}
	}
}
