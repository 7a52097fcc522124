// Package workflow defines the five-step acquisition process a match
// moves through once both parties commit.
package workflow

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealmatch/internal/model"
)

// StepStatus is derived from a match's current step, never stored.
type StepStatus string

const (
	StatusCompleted StepStatus = "completed"
	StatusActive    StepStatus = "active"
	StatusPending   StepStatus = "pending"
)

// Assistant describes the automated helper attached to a step.
type Assistant struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Step is one stage of the acquisition process.
type Step struct {
	ID                int        `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Assistant         Assistant  `json:"assistant"`
	RequiredDocuments []string   `json:"required_documents,omitempty"`
	EstimatedDuration string     `json:"estimated_duration"`
	Status            StepStatus `json:"status,omitempty"`
}

// steps is the canonical process. Order is the process order; IDs are
// 1-based and match Match.CurrentStep.
var steps = []Step{
	{
		ID:          1,
		Title:       "Initial Interest",
		Description: "Both parties express mutual interest and begin the formal acquisition process.",
		Assistant: Assistant{
			Title:       "Smart Matching Algorithm",
			Description: "Analyzes compatibility based on business metrics, investor preferences, and historical success patterns.",
		},
		EstimatedDuration: "1-2 days",
	},
	{
		ID:          2,
		Title:       "Document Exchange",
		Description: "Share essential business documents and financial statements for preliminary review.",
		Assistant: Assistant{
			Title:       "Document Intelligence",
			Description: "Automatically extracts key metrics from financial documents and flags potential concerns for human review.",
		},
		RequiredDocuments: []string{
			"Financial Statements (3 years)",
			"Tax Returns (3 years)",
			"Business License",
			"Operating Agreements",
			"Customer Contracts (major ones)",
		},
		EstimatedDuration: "3-5 days",
	},
	{
		ID:          3,
		Title:       "Valuation & Terms",
		Description: "Negotiate price and deal structure with market comparables.",
		Assistant: Assistant{
			Title:       "Valuation Assistant",
			Description: "Provides market-based valuation ranges and suggests optimal deal structures based on similar transactions.",
		},
		EstimatedDuration: "1-2 weeks",
	},
	{
		ID:          4,
		Title:       "Due Diligence",
		Description: "Comprehensive business review with guided checklists and automated analysis.",
		Assistant: Assistant{
			Title:       "Risk Assessment Engine",
			Description: "Scans documents for red flags, verifies claims, and provides risk scoring across multiple categories.",
		},
		RequiredDocuments: []string{
			"Detailed Financial Records",
			"Employee Records",
			"Legal Documents",
			"Intellectual Property Documents",
			"Operational Procedures",
		},
		EstimatedDuration: "2-4 weeks",
	},
	{
		ID:          5,
		Title:       "Legal & Closing",
		Description: "Finalize legal documents and complete the transaction with guided workflows.",
		Assistant: Assistant{
			Title:       "Contract Intelligence",
			Description: "Reviews legal documents for standard clauses, potential issues, and ensures all requirements are met.",
		},
		RequiredDocuments: []string{
			"Purchase Agreement",
			"Asset Purchase Agreement",
			"Employment Agreements",
			"Non-Compete Agreements",
		},
		EstimatedDuration: "1-3 weeks",
	},
}

// StepCount is the number of stages in the process.
func StepCount() int {
	return len(steps)
}

// Steps returns the process stages with Status derived from currentStep:
// earlier stages are completed, the current one active, later ones
// pending. A currentStep past the last stage marks everything completed.
func Steps(currentStep int) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	for i := range out {
		switch {
		case out[i].ID < currentStep:
			out[i].Status = StatusCompleted
		case out[i].ID == currentStep:
			out[i].Status = StatusActive
		default:
			out[i].Status = StatusPending
		}
	}
	return out
}

// Lookup returns the stage with the given ID.
func Lookup(id int) (Step, error) {
	if id < 1 || id > len(steps) {
		return Step{}, eris.Errorf("workflow: no step %d", id)
	}
	return steps[id-1], nil
}

// Advance moves a match to its next step and keeps the match status in
// line with progress: entering step 2 or later moves a matched deal to
// in-negotiation, and finishing the last step completes it. Rejected and
// completed matches cannot advance.
func Advance(m *model.Match) error {
	switch m.Status {
	case model.MatchStatusRejected:
		return eris.Errorf("workflow: match %s is rejected", m.ID)
	case model.MatchStatusCompleted:
		return eris.Errorf("workflow: match %s is already completed", m.ID)
	}
	if m.CurrentStep >= len(steps) {
		m.Status = model.MatchStatusCompleted
		return nil
	}

	m.CurrentStep++
	if m.CurrentStep > len(steps) {
		m.CurrentStep = len(steps)
	}
	if m.Status == model.MatchStatusMatched || m.Status == model.MatchStatusPending {
		m.Status = model.MatchStatusInNegotiation
	}
	return nil
}

// Progress reports completed stages out of the total for a match.
func Progress(m *model.Match) (completed, total int) {
	completed = m.CurrentStep - 1
	if completed < 0 {
		completed = 0
	}
	if m.Status == model.MatchStatusCompleted {
		completed = len(steps)
	}
	if completed > len(steps) {
		completed = len(steps)
	}
	return completed, len(steps)
}
