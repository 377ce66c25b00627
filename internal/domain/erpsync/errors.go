package erpsync

import "errors"

var (
	ErrPeerNotFound          = errors.New("sync peer not found")
	ErrPeerNameExists        = errors.New("a sync peer with this name already exists")
	ErrPeerDisabled          = errors.New("sync settings are disabled")
	ErrQueueItemNotFound     = errors.New("sync queue item not found")
	ErrNotClaimable          = errors.New("sync queue item is not pending")
	ErrRetryNotAllowed       = errors.New("only failed items below max retries can be retried")
	ErrUnknownDocType        = errors.New("unknown sync doc type")
	ErrInvalidAPIKey         = errors.New("invalid sync api key")
	ErrLeaderNotFound        = errors.New("employee pull record for leader not found")
	ErrRemoteRejected        = errors.New("peer rejected the sync payload")
	ErrInvalidPayload        = errors.New("invalid sync payload")
	ErrPullAlreadyInProgress = errors.New("initial pull already in progress for this peer")
)
