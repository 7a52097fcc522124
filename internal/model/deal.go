package model

import "time"

// MatchStatus represents the current state of a buyer/seller match.
type MatchStatus string

const (
	MatchStatusPending       MatchStatus = "pending"
	MatchStatusMatched       MatchStatus = "matched"
	MatchStatusInNegotiation MatchStatus = "in-negotiation"
	MatchStatusCompleted     MatchStatus = "completed"
	MatchStatusRejected      MatchStatus = "rejected"
)

// MessageType classifies a message within a match conversation.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeDocument MessageType = "document"
	MessageTypeSystem   MessageType = "system"
)

// Message is a single entry in a match conversation.
type Message struct {
	ID        string      `json:"id"`
	SenderID  string      `json:"sender_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// Match links one buyer and one seller through the acquisition workflow.
// Score and Insights are snapshots taken at creation time; the engine
// derives both on demand from the underlying profiles.
type Match struct {
	ID          string      `json:"id"`
	BuyerID     string      `json:"buyer_id"`
	SellerID    string      `json:"seller_id"`
	Status      MatchStatus `json:"status"`
	Score       int         `json:"score"`
	Insights    []string    `json:"insights,omitempty"`
	CurrentStep int         `json:"current_step"`
	Messages    []Message   `json:"messages,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// DocumentAnalysis is the record shape produced by the document analysis
// collaborator. It is display data only and is not consumed by the
// compatibility scoring engine.
type DocumentAnalysis struct {
	Revenue       string   `json:"revenue"`
	ProfitMargin  string   `json:"profit_margin"`
	RiskScore     string   `json:"risk_score"`
	RevenueGrowth string   `json:"revenue_growth"`
	KeyInsights   []string `json:"key_insights"`
}
