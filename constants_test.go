package main

import (
	"testing"

	"github.com/carlmjohnson/be"
)

func TestSessionStateString(t *testing.T) {
	tests := []struct {
		name     string
		state    sessionState
		expected string
	}{
		{name: "login state", state: loginState, expected: "login"},
		{name: "register state", state: registerState, expected: "register"},
		{name: "summary state", state: summaryState, expected: "summary"},
		{name: "detail state", state: detailState, expected: "category detail"},
		{name: "new expense state", state: newExpenseState, expected: "new expense"},
		{name: "config view state", state: configView, expected: "configuration"},
		{name: "unknown state", state: sessionState(999), expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestSessionStateAuthenticated(t *testing.T) {
	be.False(t, loginState.authenticated())
	be.False(t, registerState.authenticated())
	be.True(t, summaryState.authenticated())
	be.True(t, detailState.authenticated())
	be.True(t, newExpenseState.authenticated())
	be.True(t, configView.authenticated())
}

func TestSessionStateConstants(t *testing.T) {
	be.True(t, loginState != registerState)
	be.True(t, registerState != summaryState)
	be.True(t, summaryState != detailState)
	be.True(t, detailState != newExpenseState)
	be.True(t, newExpenseState != configView)

	// a zero model starts on the login screen
	be.Equal(t, sessionState(0), loginState)
}
