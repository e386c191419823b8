package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
)

// AppName names the config directory, the config file and the env prefix.
const AppName = "ahorrista"

const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultTimeout      = 15 * time.Second
	DefaultPingTimeout = 5 * time.Second
	DefaultLocale       = "en"
	DefaultCurrency     = "PEN"
)

// Colors holds optional theme overrides. Empty values use the built-in theme.
type Colors struct {
	Primary       string `mapstructure:"primary" toml:"primary"`
	Error         string `mapstructure:"error" toml:"error"`
	Success       string `mapstructure:"success" toml:"success"`
	Muted         string `mapstructure:"muted" toml:"muted"`
	Expense       string `mapstructure:"expense" toml:"expense"`
	Border        string `mapstructure:"border" toml:"border"`
	Text          string `mapstructure:"text" toml:"text"`
	SecondaryText string `mapstructure:"secondary_text" toml:"secondary_text"`
}

// Config represents the application configuration structure.
type Config struct {
	// Debug enables debug logging
	Debug bool `mapstructure:"debug" toml:"debug"`
	// BaseURL is where the expense backend lives
	BaseURL string `mapstructure:"base_url" toml:"base_url"`
	// Timeout bounds every backend request
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
	// PingTimeout bounds the first reachability check
	PingTimeout time.Duration `mapstructure:"ping_timeout" toml:"ping_timeout"`
	// Demo serves sample data from memory instead of the backend
	Demo bool `mapstructure:"demo" toml:"demo"`
	// Locale picks the language for month names
	Locale string `mapstructure:"locale" toml:"locale"`
	// Currency is used to display amounts
	Currency string `mapstructure:"currency" toml:"currency"`
	// SessionFile stores the signed-in credential
	SessionFile string `mapstructure:"session_file" toml:"session_file"`
	// AnthropicAPIKey enables category suggestions for new expenses
	AnthropicAPIKey string `mapstructure:"anthropic_api_key" toml:"anthropic_api_key"`

	Colors Colors `mapstructure:"colors" toml:"colors"`

	// ConfigFile is the file the values were read from, if any
	ConfigFile string `mapstructure:"-" toml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		PingTimeout: DefaultPingTimeout,
		Locale:       DefaultLocale,
		Currency:     DefaultCurrency,
		SessionFile:  DefaultSessionFile(),
	}
}

// DefaultSessionFile is session.toml under the user config directory, or the
// working directory when that cannot be determined.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+AppName+"-session.toml")
	}
	return filepath.Join(dir, AppName, "session.toml")
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if !c.Demo {
		u, err := url.Parse(c.BaseURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("base_url: %w", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Errorf("base_url %q: scheme must be http or https", c.BaseURL))
		case u.Host == "":
			errs = append(errs, fmt.Errorf("base_url %q: missing host", c.BaseURL))
		}
	}

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.PingTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ping_timeout must be positive, got %s", c.PingTimeout))
	}
	if money.GetCurrency(c.Currency) == nil {
		errs = append(errs, fmt.Errorf("currency %q is not a known ISO 4217 code", c.Currency))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
	}
	if c.SessionFile == "" && !c.Demo {
		errs = append(errs, errors.New("session_file must be set"))
	}

	return errors.Join(errs...)
}

// LocaleTag parses Locale, falling back to English.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Model represents the config view model.
type Model struct {
	configTable table.Model
}

// New creates a new config view model.
func New() Model {
	configTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Setting", Width: 20},
			{Title: "Value", Width: 40},
			{Title: "Description", Width: 50},
		}),
	)

	tableStyle := table.DefaultStyles()
	tableStyle.Selected = tableStyle.Selected.
		Foreground(lipgloss.Color("#ffd644"))

	configTable.SetStyles(tableStyle)

	return Model{configTable: configTable}
}

// SetFocus sets the focus state of the config table.
func (m *Model) SetFocus(focus bool) {
	if focus {
		m.configTable.Focus()
	} else {
		m.configTable.Blur()
	}
}

// SetSize sets the size of the config table.
func (m *Model) SetSize(width, height int) {
	m.configTable.SetHeight(height)
	m.configTable.SetWidth(width)
}

func maskSensitiveValue(value string) string {
	if value == "" {
		return "(not set)"
	}

	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}

	return value[:4] + strings.Repeat("*", len(value)-4)
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// SetConfig sets the configuration data for the view.
func (m *Model) SetConfig(config Config) {
	rows := []table.Row{
		{"Config File", orNotSet(config.ConfigFile), "File the settings were read from"},
		{"Debug", strconv.FormatBool(config.Debug), "Enable debug logging"},
		{"Base URL", config.BaseURL, "Expense backend address"},
		{"Timeout", config.Timeout.String(), "Maximum time per request"},
		{"Ping Timeout", config.PingTimeout.String(), "Maximum time for the first reachability check"},
		{"Demo", strconv.FormatBool(config.Demo), "Use built-in sample data instead of the backend"},
		{"Locale", config.Locale, "Language for month names"},
		{"Currency", config.Currency, "Currency used to display amounts"},
		{"Session File", orNotSet(config.SessionFile), "Where the sign-in is remembered"},
		{"Anthropic API Key", maskSensitiveValue(config.AnthropicAPIKey), "Enables category suggestions"},
	}

	m.configTable.SetRows(rows)
}

// Init initializes the config view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles updates to the config view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.configTable, cmd = m.configTable.Update(msg)
	return m, cmd
}

// View renders the config view.
func (m Model) View() string {
	return m.configTable.View()
}
