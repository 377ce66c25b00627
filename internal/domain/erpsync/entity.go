package erpsync

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type DocType string

const (
	DocTypeEmployeePull   DocType = "employee_pull"
	DocTypeSalesOrderPull DocType = "sales_order_pull"
	DocTypeLeaderLocation DocType = "leader_location"
)

func (d DocType) Valid() bool {
	switch d {
	case DocTypeEmployeePull, DocTypeSalesOrderPull, DocTypeLeaderLocation:
		return true
	}
	return false
}

type Action string

const (
	ActionCreate Action = "Create"
	ActionUpdate Action = "Update"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusCompleted  Status = "Completed"
	StatusFailed     Status = "Failed"
)

// OriginLocal marks records written on this instance. Records received from a
// peer carry the peer's name and are never sent out again.
const OriginLocal = "local"

// Peer is a remote ERP instance records are replicated to.
type Peer struct {
	ID                 string
	Name               string
	BaseURL            string
	APIKey             string // outbound credentials
	APISecret          string
	InboundKey         string // credentials the peer presents to us
	InboundSecretHash  string
	Enabled            bool
	SyncEmployee       bool
	SyncSalesOrder     bool
	SyncLeaderLocation bool
	LastPullAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Syncs reports whether the peer subscribes to a doc type.
func (p Peer) Syncs(d DocType) bool {
	switch d {
	case DocTypeEmployeePull:
		return p.SyncEmployee
	case DocTypeSalesOrderPull:
		return p.SyncSalesOrder
	case DocTypeLeaderLocation:
		return p.SyncLeaderLocation
	}
	return false
}

// QueueItem is one outbound replication of a record to a peer.
type QueueItem struct {
	ID            string
	PeerID        string
	DocType       DocType
	DocumentKey   string
	Action        Action
	Status        Status
	RetryCount    int
	MaxRetries    int
	Payload       json.RawMessage
	LastAttemptAt *time.Time
	ErrorLog      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanRetryManually reports whether an operator may put a failed item back in the queue.
func (q QueueItem) CanRetryManually() bool {
	return q.Status == StatusFailed && q.RetryCount < q.MaxRetries
}

// EmployeePull mirrors a team leader's employee record. Business key: employee + company.
type EmployeePull struct {
	ID           string          `json:"-"`
	Employee     string          `json:"employee"`
	Company      string          `json:"company"`
	EmployeeName string          `json:"employee_name"`
	Designation  string          `json:"designation,omitempty"`
	Department   string          `json:"department,omitempty"`
	CellNumber   string          `json:"cell_number,omitempty"`
	IsTeamLeader bool            `json:"is_team_leader"`
	Origin       string          `json:"-"`
	UpdatedAt    time.Time       `json:"-"`
	Extra        json.RawMessage `json:"extra,omitempty"`
}

func (e EmployeePull) Key() string {
	return e.Employee + "|" + e.Company
}

// SalesOrderPull mirrors a sales order header. Business key: sales_order + company.
type SalesOrderPull struct {
	ID              string          `json:"-"`
	SalesOrder      string          `json:"sales_order"`
	Company         string          `json:"company"`
	Customer        string          `json:"customer"`
	TransactionDate string          `json:"transaction_date"`
	DeliveryDate    string          `json:"delivery_date,omitempty"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	Status          string          `json:"status"`
	Origin          string          `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

func (s SalesOrderPull) Key() string {
	return s.SalesOrder + "|" + s.Company
}

// LeaderLocation is a location ping of a team leader. Business key: employee + company + recorded_at.
type LeaderLocation struct {
	ID         string    `json:"-"`
	Employee   string    `json:"employee"`
	Company    string    `json:"company"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RecordedAt time.Time `json:"recorded_at"`
	Origin     string    `json:"-"`
}

func (l LeaderLocation) Key() string {
	return l.Employee + "|" + l.Company + "|" + l.RecordedAt.UTC().Format(time.RFC3339)
}
