package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Rshep3087/ahorrista/gateway"
)

// newAuthCmd builds `login` or `register`. Missing credentials are asked for
// interactively.
func newAuthCmd(a *app, kind gateway.AuthKind) *cobra.Command {
	short := "Sign in to the expense backend"
	if kind == gateway.Register {
		short = "Create an account on the expense backend"
	}

	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: short,
		Long:  short + `. The session is remembered until you run logout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			if email == "" || password == "" {
				if err := promptCredentials(kind, &email, &password); err != nil {
					return err
				}
			}

			res, err := a.gateway.Authenticate(cmd.Context(), kind, strings.TrimSpace(email), password)
			if err != nil {
				return fmt.Errorf("%s failed: %w", kind, err)
			}

			if err := a.gate.SignIn(res.Token, res.Email); err != nil {
				return err
			}

			log.Debug("session stored", "email", res.Email)
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", res.Email)
			return nil
		},
	}

	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (prompted when empty)")

	return cmd
}

func promptCredentials(kind gateway.AuthKind, email, password *string) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Value(email).
			Validate(validateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(validatePassword(kind)),
	))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return fmt.Errorf("reading credentials: %w", err)
	}
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.gate.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// whoami is the session as shown by `whoami -o json`.
type whoami struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	BaseURL       string `json:"base_url"`
	Demo          bool   `json:"demo"`
	SessionFile   string `json:"session_file,omitempty"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := validateOutputFormat(cmd)
			if err != nil {
				return err
			}

			state := a.gate.State()
			info := whoami{
				Authenticated: state.Authenticated,
				Email:         state.UserEmail,
				BaseURL:       a.cfg.BaseURL,
				Demo:          a.cfg.Demo,
			}
			if !a.cfg.Demo {
				info.SessionFile = a.cfg.SessionFile
			}

			if outputFormat == jsonOutputFormat {
				return outputJSON(cmd.OutOrStdout(), info)
			}
			return outputWhoamiTable(cmd, info)
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func outputWhoamiTable(cmd *cobra.Command, info whoami) error {
	t := createStyledTable("FIELD", "VALUE")

	email := info.Email
	if !info.Authenticated {
		email = "(not signed in)"
	}
	t.Row("Email", email)
	t.Row("Backend", info.BaseURL)
	if info.Demo {
		t.Row("Mode", "demo")
	}
	if info.SessionFile != "" {
		t.Row("Session File", info.SessionFile)
	}

	fmt.Fprintln(cmd.OutOrStdout(), t)
	return nil
}
