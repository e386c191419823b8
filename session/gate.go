package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// View is the subtree the gate allows to render.
type View int

const (
	LoginView View = iota
	RegisterView
	AuthenticatedView
)

func (v View) String() string {
	switch v {
	case LoginView:
		return "login"
	case RegisterView:
		return "register"
	case AuthenticatedView:
		return "authenticated"
	}
	return "unknown"
}

// State is what the rest of the app may know about the session. The token
// itself stays inside the gate.
type State struct {
	Authenticated bool
	UserEmail     string
}

// Gate owns the authenticated-session flag and the stored credential. It is
// built once at startup and shared; Token may be called from request
// goroutines.
type Gate struct {
	store Store

	mu    sync.RWMutex
	view  View
	creds Credentials
}

// NewGate restores a previous session when the store holds both a token and
// an email. A store that cannot be read starts signed out.
func NewGate(store Store) (*Gate, error) {
	g := &Gate{store: store, view: LoginView}

	creds, ok, err := store.Load()
	if err != nil {
		return g, fmt.Errorf("restore session: %w", err)
	}
	if ok {
		g.creds = creds
		g.view = AuthenticatedView
		log.Debug("restored session", "email", creds.Email)
	}

	return g, nil
}

func (g *Gate) View() View {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.view
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return State{
		Authenticated: g.view == AuthenticatedView,
		UserEmail:     g.creds.Email,
	}
}

// Token returns the bearer credential, or "" when signed out.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.creds.Token
}

// ToggleAuthView flips between the login and register screens. It does
// nothing while authenticated.
func (g *Gate) ToggleAuthView() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.view {
	case LoginView:
		g.view = RegisterView
	case RegisterView:
		g.view = LoginView
	}
	return g.view
}

// SignIn persists a successful authentication and then records it. When the
// store cannot be written the gate is left as it was.
func (g *Gate) SignIn(token, email string) error {
	creds := Credentials{Token: token, Email: email}
	if !creds.complete() {
		return errors.New("sign in: token and email are required")
	}

	if err := g.store.Save(creds); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}

	g.mu.Lock()
	g.creds = creds
	g.view = AuthenticatedView
	g.mu.Unlock()
	return nil
}

// SignOut drops the credential in memory and in the store and returns to the
// login screen.
func (g *Gate) SignOut() error {
	g.mu.Lock()
	g.creds = Credentials{}
	g.view = LoginView
	g.mu.Unlock()

	if err := g.store.Clear(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}
