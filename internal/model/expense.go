package model

import "strings"

type Mode string

const (
	ModeCredit Mode = "credit"
	ModeDebit  Mode = "debit"
)

// ParseMode lower-cases s and reports whether it names a known mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeCredit, ModeDebit:
		return m, true
	}
	return m, false
}

// Sign is the prefix shown next to an amount. Credits are money going out.
func (m Mode) Sign() string {
	if m == ModeCredit {
		return "-"
	}
	return "+"
}

type Expense struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode"`
	Amount      int    `json:"amount"`
	User        string `json:"user,omitempty"`
}

// NewExpense is the create request body.
type NewExpense struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Mode        Mode   `json:"mode"`
	Amount      int    `json:"amount"`
	User        string `json:"user"`
}

// Draft holds unsaved form input. Amount stays a string until submit.
type Draft struct {
	Title       string
	Description string
	Mode        string
	Amount      string
}

func EmptyDraft() Draft {
	return Draft{Mode: string(ModeCredit)}
}

// Complete reports whether every field has a value.
func (d Draft) Complete() bool {
	return d.Title != "" && d.Description != "" && d.Mode != "" && d.Amount != ""
}
