package erpsync

import (
	"context"
	"encoding/json"
)

// Transport carries payloads to and from peers.
type Transport interface {
	Send(ctx context.Context, peer Peer, docType DocType, payload json.RawMessage) error
	Fetch(ctx context.Context, peer Peer, docType DocType) ([]json.RawMessage, error)
}

// Engine drives the outbound queue.
type Engine interface {
	// EnqueueRecord creates one queue item per enabled peer that syncs the doc type
	EnqueueRecord(ctx context.Context, docType DocType, key string, action Action, record any) ([]QueueItem, error)

	// Process attempts one item; transport failures are recorded on the item, not returned
	Process(ctx context.Context, itemID string) (QueueItem, error)

	Retry(ctx context.Context, itemID string) (QueueItem, error)

	// Sweep re-dispatches Pending items below max retries
	Sweep(ctx context.Context) (int, error)

	// Run consumes dispatched item IDs until ctx ends
	Run(ctx context.Context) error

	List(ctx context.Context, filter QueueFilter) ([]QueueItemResponse, error)
}

// Receiver applies records sent by peers and serves exports for initial pulls.
type Receiver interface {
	Authenticate(ctx context.Context, key, secret string) (Peer, error)
	Receive(ctx context.Context, peer Peer, docType DocType, data json.RawMessage) (string, error)
	Export(ctx context.Context, docType DocType) ([]any, error)
}

// Service covers local record writes and peer administration.
type Service interface {
	SaveEmployeePull(ctx context.Context, req EmployeePull) (EmployeePull, error)
	SaveSalesOrderPull(ctx context.Context, req SalesOrderPull) (SalesOrderPull, error)
	SaveLeaderLocation(ctx context.Context, req LeaderLocation) (LeaderLocation, error)

	CreatePeer(ctx context.Context, req CreatePeerRequest) (PeerResponse, error)
	UpdatePeer(ctx context.Context, req UpdatePeerRequest) (PeerResponse, error)
	ListPeers(ctx context.Context) ([]PeerResponse, error)

	// InitialPull imports the peer's exports for every doc type it syncs
	InitialPull(ctx context.Context, peerID string) (PullResult, error)
}
