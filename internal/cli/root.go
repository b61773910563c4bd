package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/cache"
	"github.com/openletters/carta/internal/config"
	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/session"
	"github.com/openletters/carta/internal/tui"
)

var (
	serverURL  string
	logLevel   string
	logFile    string
	logConsole bool
)

var rootCmd = &cobra.Command{
	Use:   "carta",
	Short: "Carta - browse and sign open letters from your terminal",
	Long: `Carta is a terminal client for a public archive of open letters and
petitions. Browse recent letters, search by subject or author, read them and
add or withdraw your signature.

Run 'carta' without arguments to launch the interactive TUI.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			cfg = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("server") {
			cfg.ServerURL = serverURL
			configChanged = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}

		if configChanged {
			if err := cfg.Save(); err != nil {
				logger.Warn("Failed to save config", logger.F("error", err))
			}
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		if cfg.LogFile != "" {
			logConfig.FilePath = cfg.LogFile
		}
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Carta started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		client, sessions, err := newAPIClient()
		if err != nil {
			return err
		}

		store, err := cache.OpenDefault()
		if err != nil {
			logger.Warn("Failed to open letter cache", logger.F("error", err))
			store = nil
		}
		defer func() {
			if store != nil {
				_ = store.Close()
			}
		}()

		logger.Info("Launching TUI")
		m := tui.NewModel(client, sessions, store)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Carta exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// newAPIClient builds the API client and session manager used by every
// command that talks to the server.
func newAPIClient() (*api.Client, *session.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	tokenPath, err := session.DefaultTokenPath()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve token path: %w", err)
	}

	sessions := session.NewManager(session.NewFileStorage(tokenPath))
	return api.New(cfg.ServerURL, sessions), sessions, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Letters API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(whoamiCmd)
}
