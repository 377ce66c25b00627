package erpsync

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

type CreatePeerRequest struct {
	Name               string `json:"name"`
	BaseURL            string `json:"base_url"`
	APIKey             string `json:"api_key"`
	APISecret          string `json:"api_secret"`
	InboundKey         string `json:"inbound_key"`
	InboundSecret      string `json:"inbound_secret"`
	Enabled            bool   `json:"enabled"`
	SyncEmployee       bool   `json:"sync_employee"`
	SyncSalesOrder     bool   `json:"sync_sales_order"`
	SyncLeaderLocation bool   `json:"sync_leader_location"`
}

// NormalizeBaseURL trims whitespace and trailing slashes.
func NormalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func validateBaseURL(u string) *validator.ValidationError {
	if validator.IsEmpty(u) {
		return &validator.ValidationError{Field: "base_url", Message: "base_url is required"}
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return &validator.ValidationError{Field: "base_url", Message: "base_url must start with http:// or https://"}
	}
	return nil
}

func (r *CreatePeerRequest) Validate() error {
	var errs validator.ValidationErrors

	r.BaseURL = NormalizeBaseURL(r.BaseURL)
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if e := validateBaseURL(r.BaseURL); e != nil {
		errs = append(errs, *e)
	}
	if validator.IsEmpty(r.APIKey) || validator.IsEmpty(r.APISecret) {
		errs = append(errs, validator.ValidationError{Field: "api_key", Message: "api_key and api_secret are required"})
	}
	if validator.IsEmpty(r.InboundKey) || len(r.InboundSecret) < 16 {
		errs = append(errs, validator.ValidationError{Field: "inbound_secret", Message: "inbound_key and an inbound_secret of at least 16 characters are required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePeerRequest struct {
	ID                 string  `json:"-"` // From URL
	BaseURL            *string `json:"base_url,omitempty"`
	APIKey             *string `json:"api_key,omitempty"`
	APISecret          *string `json:"api_secret,omitempty"`
	InboundSecret      *string `json:"inbound_secret,omitempty"`
	Enabled            *bool   `json:"enabled,omitempty"`
	SyncEmployee       *bool   `json:"sync_employee,omitempty"`
	SyncSalesOrder     *bool   `json:"sync_sales_order,omitempty"`
	SyncLeaderLocation *bool   `json:"sync_leader_location,omitempty"`
}

func (r *UpdatePeerRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.BaseURL != nil {
		normalized := NormalizeBaseURL(*r.BaseURL)
		r.BaseURL = &normalized
		if e := validateBaseURL(normalized); e != nil {
			errs = append(errs, *e)
		}
	}
	if r.InboundSecret != nil && len(*r.InboundSecret) < 16 {
		errs = append(errs, validator.ValidationError{Field: "inbound_secret", Message: "inbound_secret must be at least 16 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type QueueFilter struct {
	Status  *Status
	DocType *DocType
	PeerID  *string
	Limit   int
}

type PeerResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	BaseURL            string     `json:"base_url"`
	InboundKey         string     `json:"inbound_key"`
	Enabled            bool       `json:"enabled"`
	SyncEmployee       bool       `json:"sync_employee"`
	SyncSalesOrder     bool       `json:"sync_sales_order"`
	SyncLeaderLocation bool       `json:"sync_leader_location"`
	LastPullAt         *time.Time `json:"last_pull_at,omitempty"`
}

type QueueItemResponse struct {
	ID            string     `json:"id"`
	PeerID        string     `json:"peer_id"`
	DocType       DocType    `json:"doctype"`
	DocumentKey   string     `json:"document_key"`
	Action        Action     `json:"action"`
	Status        Status     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
	LastAttemptAt *time.Time `json:"last_attempt_time,omitempty"`
	ErrorLog      *string    `json:"error_log,omitempty"`
}

type PullResult struct {
	PeerID   string             `json:"peer_id"`
	Imported map[DocType]int    `json:"imported"`
	Failed   map[DocType]int    `json:"failed"`
	Errors   map[DocType]string `json:"errors,omitempty"`
}

// Envelope is the body exchanged with peers.
type Envelope struct {
	Data any `json:"data"`
}

func NewPeerResponse(p Peer) PeerResponse {
	return PeerResponse{
		ID:                 p.ID,
		Name:               p.Name,
		BaseURL:            p.BaseURL,
		InboundKey:         p.InboundKey,
		Enabled:            p.Enabled,
		SyncEmployee:       p.SyncEmployee,
		SyncSalesOrder:     p.SyncSalesOrder,
		SyncLeaderLocation: p.SyncLeaderLocation,
		LastPullAt:         p.LastPullAt,
	}
}

func NewQueueItemResponse(q QueueItem) QueueItemResponse {
	return QueueItemResponse{
		ID:            q.ID,
		PeerID:        q.PeerID,
		DocType:       q.DocType,
		DocumentKey:   q.DocumentKey,
		Action:        q.Action,
		Status:        q.Status,
		RetryCount:    q.RetryCount,
		MaxRetries:    q.MaxRetries,
		LastAttemptAt: q.LastAttemptAt,
		ErrorLog:      q.ErrorLog,
	}
}
