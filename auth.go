package main

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"

	"github.com/Rshep3087/ahorrista/gateway"
	"github.com/Rshep3087/ahorrista/session"
)

const minPasswordLength = 4

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	generation uint64
	kind       gateway.AuthKind
	result     gateway.AuthResult
	err        error
}

func authKindFor(state sessionState) gateway.AuthKind {
	if state == registerState {
		return gateway.Register
	}
	return gateway.Login
}

func stateForView(v session.View) sessionState {
	switch v {
	case session.RegisterView:
		return registerState
	case session.AuthenticatedView:
		return summaryState
	}
	return loginState
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

func validatePassword(kind gateway.AuthKind) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New("password is required")
		}
		if kind == gateway.Register && len(s) < minPasswordLength {
			return fmt.Errorf("password must have at least %d characters", minPasswordLength)
		}
		return nil
	}
}

func newAuthForm(kind gateway.AuthKind) *huh.Form {
	title := "Sign in"
	submit := "Sign in"
	if kind == gateway.Register {
		title = "Create an account"
		submit = "Register"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Key("email").
				Placeholder("you@example.com").
				Validate(validateEmail),

			huh.NewInput().
				Title("Password").
				Key("password").
				EchoMode(huh.EchoModePassword).
				Validate(validatePassword(kind)),

			huh.NewConfirm().
				Key("submit").
				Title(title).
				Affirmative(submit).
				Negative("Clear"),
		),
	).WithShowHelp(false)
}

// showAuth puts a fresh form for state on screen. Responses to attempts made
// on an earlier form are ignored.
func showAuth(m *model, state sessionState) (tea.Model, tea.Cmd) {
	m.authGeneration++
	m.authPending = false
	m.authErr = nil
	m.sessionState = state
	m.authForm = newAuthForm(authKindFor(state))
	return *m, tea.Batch(m.authForm.Init(), tea.WindowSize())
}

func toggleAuthView(m *model) (tea.Model, tea.Cmd) {
	next := stateForView(m.gate.ToggleAuthView())
	log.Debug("toggled auth view", "view", next)
	return showAuth(m, next)
}

func updateAuth(msg tea.Msg, m *model) (tea.Model, tea.Cmd) {
	if m.authForm == nil || m.authPending {
		return *m, nil
	}

	form, cmd := m.authForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.authForm = f
	}

	switch m.authForm.State {
	case huh.StateCompleted:
		if !m.authForm.GetBool("submit") {
			return showAuth(m, m.sessionState)
		}
		email := strings.TrimSpace(m.authForm.GetString("email"))
		secret := m.authForm.GetString("password")
		submit := submitAuth(m, authKindFor(m.sessionState), email, secret)
		return *m, submit

	case huh.StateAborted:
		return showAuth(m, m.sessionState)
	}

	return *m, cmd
}

func submitAuth(m *model, kind gateway.AuthKind, email, secret string) tea.Cmd {
	m.authGeneration++
	m.authPending = true
	m.authErr = nil

	gen := m.authGeneration
	gw := m.gateway
	return tea.Batch(m.loadingSpinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		res, err := gw.Authenticate(ctx, kind, email, secret)
		return authResultMsg{generation: gen, kind: kind, result: res, err: err}
	})
}

func (m model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if msg.generation != m.authGeneration || !m.authPending {
		log.Debug("discarding stale auth response", "generation", msg.generation, "current", m.authGeneration)
		return m, nil
	}

	if msg.err == nil {
		msg.err = m.gate.SignIn(msg.result.Token, msg.result.Email)
	}

	if msg.err != nil {
		log.Info("authentication failed", "kind", msg.kind, "error", msg.err)
		_, cmd := showAuth(&m, m.sessionState)
		m.authErr = msg.err
		return m, cmd
	}

	log.Info("signed in", "email", msg.result.Email, "kind", msg.kind)
	cmd := enterAuthenticated(&m)
	return m, cmd
}

func authView(m model) string {
	var b strings.Builder

	if m.authPending {
		verb := "Signing in"
		if m.sessionState == registerState {
			verb = "Creating your account"
		}
		fmt.Fprintf(&b, "%s %s...", m.loadingSpinner.View(), verb)
		return b.String()
	}

	if m.authForm != nil {
		b.WriteString(m.authForm.View())
	}

	if m.authErr != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.errorStyle.Render(gateway.UserMessage(m.authErr)))
	}

	b.WriteString("\n")
	hint := "No account yet? Press ctrl+t to register."
	if m.sessionState == registerState {
		hint = "Already registered? Press ctrl+t to sign in."
	}
	b.WriteString(m.styles.mutedStyle.Render(hint))

	return b.String()
}
