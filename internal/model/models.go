// Package model defines the shared data structures of the core service.
package model

import (
	"encoding/json"
	"time"
)

// Remote policy tags stored on search_configs.remote_policy.
const (
	RemotePolicyRemote = "REMOTE"
	RemotePolicyHybrid = "HYBRID"
	RemotePolicyOnSite = "ON_SITE"
)

// SearchConfig mirrors a search_configs row. A config is polled by the
// discovery scheduler while is_active is true; it is deactivated when an
// application derived from it reaches HIRED.
type SearchConfig struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	JobTitles    []string  `json:"jobTitles"`
	Locations    []string  `json:"locations"`
	RemotePolicy string    `json:"remotePolicy"`
	Keywords     []string  `json:"keywords"`
	RedFlags     []string  `json:"redFlags"` // exclusion terms — any match discards the offer
	SalaryMin    *int      `json:"salaryMin"`
	SalaryMax    *int      `json:"salaryMax"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// JobListing is a normalised offer fetched from an external job board.
// It is serialised to JSON and stored in job_feed.raw_data; nothing in
// this service interprets it beyond the red-flag text fields.
type JobListing struct {
	ExternalID   string  `json:"externalId"`
	Title        string  `json:"title"`
	Company      string  `json:"company"`
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	SalaryMin    float64 `json:"salaryMin,omitempty"`
	SalaryMax    float64 `json:"salaryMax,omitempty"`
	SourceURL    string  `json:"sourceUrl"`
	ContractType string  `json:"contractType,omitempty"`
	PublishedAt  string  `json:"publishedAt,omitempty"`
}

// Triage states for job_feed.status.
const (
	FeedPending  = "PENDING"
	FeedApproved = "APPROVED"
	FeedRejected = "REJECTED"
)

// JobFeedItem is one row of the triage inbox. source_url is globally
// unique: at most one stored copy of a given listing exists, however many
// configs discover it.
type JobFeedItem struct {
	ID             string          `json:"id"`
	UserID         string          `json:"-"`
	SearchConfigID string          `json:"searchConfigId,omitempty"` // empty for manual additions
	SourceURL      string          `json:"sourceUrl"`
	Status         string          `json:"status"`
	RawData        json.RawMessage `json:"rawData"`
	IsManual       bool            `json:"isManual"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      time.Time       `json:"expiresAt"` // enforcement is an external sweep
}

// TransitionRecord is one entry of an application's append-only history log.
type TransitionRecord struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}

// Application is a tracked job application moving through the kanban
// state machine. ai_analysis and generated_cover_letter are written by
// the external scorer and only carried here.
type Application struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"-"`
	JobFeedID            string          `json:"jobFeedId,omitempty"`
	SearchConfigID       string          `json:"searchConfigId,omitempty"`
	CurrentStatus        string          `json:"currentStatus"`
	AIAnalysis           json.RawMessage `json:"aiAnalysis"`
	GeneratedCoverLetter *string         `json:"generatedCoverLetter"`
	UserNotes            *string         `json:"userNotes"`
	UserRating           *int            `json:"userRating"`
	HistoryLog           json.RawMessage `json:"historyLog"`
	ReminderAt           *time.Time      `json:"reminderAt"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}
