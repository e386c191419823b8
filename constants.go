package main

import "time"

const (
	appName = "ahorrista"
	// logFileName receives log output while the TUI owns the terminal
	logFileName = "ahorrista.log"

	standardMargin = 2
	// takenHeight is the space used by the title and help bar
	takenHeight = 6

	authTimeout             = 20 * time.Second
	aiRecommendationTimeout = 30 * time.Second
	anthropicMaxTokens      = 300
	maxConfidenceScore      = 100
)

// Session states
type sessionState int

const (
	loginState sessionState = iota
	registerState
	summaryState
	detailState
	newExpenseState
	configView
)

func (ss sessionState) String() string {
	switch ss {
	case loginState:
		return "login"
	case registerState:
		return "register"
	case summaryState:
		return "summary"
	case detailState:
		return "category detail"
	case newExpenseState:
		return "new expense"
	case configView:
		return "configuration"
	}

	return "unknown"
}

// authenticated reports whether the state belongs to the signed-in flow.
func (ss sessionState) authenticated() bool {
	return ss != loginState && ss != registerState
}
