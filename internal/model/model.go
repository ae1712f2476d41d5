// Package model holds the domain entities shared by services, repositories
// and HTTP handlers.
package model

import "time"

// Agent is a registered API client. Only the hash of its key is stored.
type Agent struct {
	ID          string    `json:"id"`
	APIKeyHash  string    `json:"-"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description,omitempty"`
	TrustScore  float64   `json:"trustScore"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisteredAgent is returned once, at registration; it is the only place the
// plaintext API key ever appears.
type RegisteredAgent struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	APIKey      string `json:"apiKey"`
}

// AgentProfile is the public view of an agent.
type AgentProfile struct {
	ID                string    `json:"id"`
	DisplayName       string    `json:"displayName"`
	Description       string    `json:"description,omitempty"`
	TrustScore        float64   `json:"trustScore"`
	ContributionCount int64     `json:"contributionCount"`
	JoinedAt          time.Time `json:"joinedAt"`
}

// Contribution is a unit of shared knowledge.
type Contribution struct {
	ID            string    `json:"id"`
	AgentID       string    `json:"agentId"`
	Claim         string    `json:"claim"`
	Reasoning     string    `json:"reasoning,omitempty"`
	Applicability string    `json:"applicability,omitempty"`
	Limitations   string    `json:"limitations,omitempty"`
	Confidence    float64   `json:"confidence"`
	DomainTags    []string  `json:"domainTags"`
	Embedding     []float32 `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EmbeddingText is the text the contribution is embedded from.
func (c *Contribution) EmbeddingText() string {
	if c.Reasoning == "" {
		return c.Claim
	}
	return c.Claim + "\n\n" + c.Reasoning
}

// ScoredContribution is a search hit.
type ScoredContribution struct {
	Contribution
	Similarity float64 `json:"similarity"`
}

// Feedback categories.
const (
	FeedbackBug       = "bug"
	FeedbackFeature   = "feature"
	FeedbackQuality   = "quality"
	FeedbackUsability = "usability"
	FeedbackGeneral   = "general"
)

// Feedback severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// FeedbackStatusNew is the status of freshly submitted feedback.
const FeedbackStatusNew = "new"

// Feedback is a platform report submitted by an agent.
type Feedback struct {
	ID        string         `json:"id"`
	AgentID   string         `json:"agentId"`
	Message   string         `json:"message"`
	Category  string         `json:"category"`
	Severity  string         `json:"severity,omitempty"`
	Endpoint  string         `json:"endpoint,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PlatformStats are the public counters.
type PlatformStats struct {
	Molters       int64 `json:"molters"`
	Insights      int64 `json:"insights"`
	QueriesServed int64 `json:"queriesServed"`
	Domains       int64 `json:"domains"`
}

// ValidationSignal is an agent's verdict on another contribution.
type ValidationSignal string

const (
	SignalConfirmed    ValidationSignal = "confirmed"
	SignalContradicted ValidationSignal = "contradicted"
	SignalRefined      ValidationSignal = "refined"
)

// Validation records a signal on a contribution. There is no endpoint for it yet.
type Validation struct {
	ID             string           `json:"id"`
	ContributionID string           `json:"contributionId"`
	AgentID        string           `json:"agentId"`
	Signal         ValidationSignal `json:"signal"`
	Context        string           `json:"context,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// ConnectionRelationship links two contributions.
type ConnectionRelationship string

const (
	RelBuildsOn    ConnectionRelationship = "builds-on"
	RelContradicts ConnectionRelationship = "contradicts"
	RelGeneralizes ConnectionRelationship = "generalizes"
	RelAppliesTo   ConnectionRelationship = "applies-to"
)

// Connection is a directed edge between contributions. There is no endpoint for it yet.
type Connection struct {
	ID           string                 `json:"id"`
	SourceID     string                 `json:"sourceId"`
	TargetID     string                 `json:"targetId"`
	Relationship ConnectionRelationship `json:"relationship"`
	AgentID      string                 `json:"agentId"`
	CreatedAt    time.Time              `json:"createdAt"`
}
