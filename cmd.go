package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rshep3087/ahorrista/config"
	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/month"
	"github.com/Rshep3087/ahorrista/session"
)

const (
	jsonOutputFormat  = "json"
	tableOutputFormat = "table"
)

var errNotSignedIn = errors.New("not signed in, run `ahorrista login` first")

// app holds what the commands share once configuration has been read. It is
// filled in by the root command's PersistentPreRunE.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg     config.Config
	gate    *session.Gate
	gateway gateway.Gateway
	ai      *AIRecommender
}

// newRootCmd builds the command tree. Running it without a subcommand starts
// the TUI.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "A terminal UI and CLI for tracking monthly expenses",
		Long: `ahorrista signs in to an expense tracking backend and shows a month of
spending grouped by category, with the transactions behind every total.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.connect()
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return rootAction(c.Context(), a.cfg, a.gate, a.gateway, a.ai)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./ahorrista.toml or $XDG_CONFIG_HOME/ahorrista/ahorrista.toml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("base-url", config.DefaultBaseURL, "address of the expense backend")
	flags.Bool("demo", false, "use built-in sample data instead of the backend")
	flags.String("locale", config.DefaultLocale, "language for month names (en, es)")
	flags.String("currency", config.DefaultCurrency, "ISO 4217 code used to display amounts")

	// Bind flags to viper
	_ = a.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = a.v.BindPFlag("demo", flags.Lookup("demo"))
	_ = a.v.BindPFlag("locale", flags.Lookup("locale"))
	_ = a.v.BindPFlag("currency", flags.Lookup("currency"))

	rootCmd.AddCommand(
		newAuthCmd(a, gateway.Login),
		newAuthCmd(a, gateway.Register),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSummaryCmd(a),
		newDetailCmd(a),
		newReportCmd(a),
		newCategoriesCmd(a),
		newExpensesCmd(a),
		newGoalsCmd(a),
		newDevserverCmd(a),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env, the config file, AHORRISTA_* variables and flags,
// in increasing order of precedence.
func (a *app) loadConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("reading .env", "error", err)
	}

	v := a.v
	defaults := config.Default()
	v.SetDefault("debug", false)
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("ping_timeout", defaults.PingTimeout)
	v.SetDefault("demo", false)
	v.SetDefault("locale", defaults.Locale)
	v.SetDefault("currency", defaults.Currency)
	v.SetDefault("session_file", defaults.SessionFile)
	v.SetDefault("anthropic_api_key", "")

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("anthropic_api_key", "AHORRISTA_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		// Search config in multiple locations (in order of precedence)
		v.SetConfigName(config.AppName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, config.AppName))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", config.AppName))
		}
		v.AddConfigPath(filepath.Join("/etc", config.AppName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		log.Debug("no config file found")
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	log.SetLevel(log.InfoLevel)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("configuration loaded", "file", cfg.ConfigFile, "base_url", cfg.BaseURL, "demo", cfg.Demo)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	return nil
}

// connect restores the session and builds the gateway that reads it.
func (a *app) connect() error {
	var store session.Store = session.NewFileStore(a.cfg.SessionFile)
	if a.cfg.Demo {
		store = session.NewMemoryStore()
	}

	gate, err := session.NewGate(store)
	if err != nil {
		log.Warn("could not restore the previous session", "error", err)
	}
	a.gate = gate
	a.ai = NewAIRecommender(anthropicProvider(a.cfg))

	if a.cfg.Demo {
		a.gateway = gateway.NewDemo(gateway.DemoCurrency(a.cfg.Currency))
		return nil
	}

	client, err := gateway.NewClient(a.cfg.BaseURL, gate,
		gateway.WithTimeout(a.cfg.Timeout),
		gateway.WithPingTimeout(a.cfg.PingTimeout),
		gateway.WithCurrency(a.cfg.Currency),
		gateway.WithLogger(log.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to create expense client: %w", err)
	}
	a.gateway = client

	return nil
}

// requireSession fails commands that need a signed-in user. Demo data needs
// no credential.
func (a *app) requireSession() error {
	if a.cfg.Demo {
		return nil
	}
	if a.gate == nil || !a.gate.State().Authenticated {
		return errNotSignedIn
	}
	return nil
}

// monthFlag reads --month, defaulting to the current month.
func monthFlag(cmd *cobra.Command) (month.Cursor, error) {
	s, _ := cmd.Flags().GetString("month")
	if s == "" {
		return month.Now(), nil
	}
	return month.Parse(s)
}

func addMonthFlag(cmd *cobra.Command) {
	cmd.Flags().String("month", "", "month as YYYY-MM (defaults to the current month)")
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", tableOutputFormat, "Output format: table or json")
}

func validateOutputFormat(cmd *cobra.Command) (string, error) {
	outputFormat, _ := cmd.Flags().GetString("output")
	validFormats := []string{tableOutputFormat, jsonOutputFormat}
	if !slices.Contains(validFormats, outputFormat) {
		return "", fmt.Errorf("invalid output format: %s (must be one of %v)", outputFormat, validFormats)
	}
	return outputFormat, nil
}

// Utility functions for output formatting.
func outputJSON(w io.Writer, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func createStyledTable(headers ...string) *table.Table {
	var (
		teal      = lipgloss.Color("37")
		gray      = lipgloss.Color("245")
		lightGray = lipgloss.Color("241")

		headerStyle  = lipgloss.NewStyle().Foreground(teal).Bold(true).Align(lipgloss.Center)
		cellStyle    = lipgloss.NewStyle().Padding(0, 1)
		oddRowStyle  = cellStyle.Foreground(gray)
		evenRowStyle = cellStyle.Foreground(lightGray)
	)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(teal)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers(headers...)
}
