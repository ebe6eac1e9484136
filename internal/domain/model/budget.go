package model

import (
	"time"
)

type Category string

const (
	CategorySite   Category = "SITE"
	CategoryBot    Category = "BOT"
	CategoryApp    Category = "APP"
	CategoryScript Category = "SCRIPT"
)

// ParseCategory validates a raw category string coming from a callback payload.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategorySite, CategoryBot, CategoryApp, CategoryScript:
		return Category(s), true
	}
	return "", false
}

type BudgetStatus string

const (
	BudgetPending   BudgetStatus = "PENDING"
	BudgetAnalyzing BudgetStatus = "ANALYZING"
	BudgetApproved  BudgetStatus = "APPROVED"
	BudgetRejected  BudgetStatus = "REJECTED"
	BudgetCompleted BudgetStatus = "COMPLETED"
)

// ParseBudgetStatus validates a raw status string coming from a callback payload.
func ParseBudgetStatus(s string) (BudgetStatus, bool) {
	switch BudgetStatus(s) {
	case BudgetPending, BudgetAnalyzing, BudgetApproved, BudgetRejected, BudgetCompleted:
		return BudgetStatus(s), true
	}
	return "", false
}

// CanTransition reports whether a budget may move from its current status to
// the target. ANALYZING is reachable from any status (a rejected proposal
// always routes back to analysis); PENDING is never a target again; REJECTED
// and COMPLETED are otherwise terminal.
func (s BudgetStatus) CanTransition(to BudgetStatus) bool {
	if to == BudgetAnalyzing {
		return true
	}
	switch to {
	case BudgetApproved:
		return s == BudgetPending || s == BudgetAnalyzing
	case BudgetRejected:
		return s == BudgetAnalyzing
	case BudgetCompleted:
		return s == BudgetApproved
	}
	return false
}

// NotifiesCustomer reports whether reaching this status must emit a
// customer-facing notification. PENDING and ANALYZING are internal.
func (s BudgetStatus) NotifiesCustomer() bool {
	switch s {
	case BudgetApproved, BudgetRejected, BudgetCompleted:
		return true
	}
	return false
}

// IntakeAnswers carries everything collected by the budget intake
// conversation. All fields are free text; Specific holds the per-category
// question/answer map.
type IntakeAnswers struct {
	Objective    string
	Audience     string
	Features     string
	Deadline     string
	Budget       string
	Design       string
	Maintenance  bool
	Technologies string
	Hosting      bool
	Integrations string
	Specific     map[string]string
}

// Budget is the aggregate for one project budget request. ChatActive is an
// axis orthogonal to Status: a chat may be open or closed in any status.
type Budget struct {
	ID       string
	UserID   string
	Category Category
	Answers  IntakeAnswers
	Status   BudgetStatus

	ChatActive bool

	// ProposalResolvedAt is set the first time a proposal on this budget is
	// accepted or rejected; replayed proposal callbacks are refused after that.
	ProposalResolvedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBudget(id, userID string, category Category, answers IntakeAnswers) *Budget {
	now := time.Now()
	if answers.Specific == nil {
		answers.Specific = map[string]string{}
	}
	return &Budget{
		ID:        id,
		UserID:    userID,
		Category:  category,
		Answers:   answers,
		Status:    BudgetPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *Budget) ProposalOpen() bool { return b.ProposalResolvedAt == nil }
