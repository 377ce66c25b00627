package erpsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
)

type fakePeers struct {
	mu    sync.Mutex
	peers map[string]erpsync.Peer
	pulls map[string]time.Time
}

func newFakePeers(peers ...erpsync.Peer) *fakePeers {
	f := &fakePeers{peers: map[string]erpsync.Peer{}, pulls: map[string]time.Time{}}
	for _, p := range peers {
		f.peers[p.ID] = p
	}
	return f
}

func (f *fakePeers) Create(_ context.Context, p erpsync.Peer) (erpsync.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.peers {
		if existing.Name == p.Name {
			return erpsync.Peer{}, erpsync.ErrPeerNameExists
		}
	}
	p.ID = fmt.Sprintf("peer-%d", len(f.peers)+1)
	f.peers[p.ID] = p
	return p, nil
}

func (f *fakePeers) Update(_ context.Context, p erpsync.Peer) (erpsync.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.peers[p.ID]; !ok {
		return erpsync.Peer{}, erpsync.ErrPeerNotFound
	}
	f.peers[p.ID] = p
	return p, nil
}

func (f *fakePeers) GetByID(_ context.Context, id string) (erpsync.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.peers[id]
	if !ok {
		return erpsync.Peer{}, erpsync.ErrPeerNotFound
	}
	return p, nil
}

func (f *fakePeers) GetByInboundKey(_ context.Context, key string) (erpsync.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.peers {
		if p.InboundKey == key {
			return p, nil
		}
	}
	return erpsync.Peer{}, erpsync.ErrPeerNotFound
}

func (f *fakePeers) List(context.Context) ([]erpsync.Peer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []erpsync.Peer
	for _, p := range f.peers {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePeers) ListEnabled(ctx context.Context) ([]erpsync.Peer, error) {
	all, _ := f.List(ctx)
	var out []erpsync.Peer
	for _, p := range all {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePeers) TouchLastPull(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls[id] = at
	return nil
}

// fakeItems mirrors the conditional updates of the SQL queue repository.
type fakeItems struct {
	mu    sync.Mutex
	items map[string]erpsync.QueueItem
	seq   int
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: map[string]erpsync.QueueItem{}}
}

func (f *fakeItems) Create(_ context.Context, item erpsync.QueueItem) (erpsync.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	item.ID = fmt.Sprintf("item-%d", f.seq)
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (erpsync.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return erpsync.QueueItem{}, erpsync.ErrQueueItemNotFound
	}
	return item, nil
}

func (f *fakeItems) get(id string) erpsync.QueueItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeItems) put(item erpsync.QueueItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
}

func (f *fakeItems) Claim(_ context.Context, id string, at time.Time) (erpsync.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return erpsync.QueueItem{}, erpsync.ErrQueueItemNotFound
	}
	if item.Status != erpsync.StatusPending {
		return erpsync.QueueItem{}, erpsync.ErrNotClaimable
	}
	item.Status = erpsync.StatusProcessing
	item.LastAttemptAt = &at
	f.items[id] = item
	return item, nil
}

func (f *fakeItems) MarkCompleted(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := f.items[id]
	item.Status = erpsync.StatusCompleted
	item.ErrorLog = nil
	item.UpdatedAt = at
	f.items[id] = item
	return nil
}

func (f *fakeItems) MarkFailedAttempt(_ context.Context, id string, retryCount int, status erpsync.Status, errorLog string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := f.items[id]
	item.RetryCount = retryCount
	item.Status = status
	item.ErrorLog = &errorLog
	item.LastAttemptAt = &at
	f.items[id] = item
	return nil
}

func (f *fakeItems) ResetForRetry(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := f.items[id]
	if item.Status != erpsync.StatusFailed {
		return erpsync.ErrRetryNotAllowed
	}
	item.Status = erpsync.StatusPending
	f.items[id] = item
	return nil
}

func (f *fakeItems) RequeueStale(_ context.Context, cutoff time.Time, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for id, item := range f.items {
		if item.Status == erpsync.StatusProcessing && item.LastAttemptAt != nil && item.LastAttemptAt.Before(cutoff) {
			item.Status = erpsync.StatusPending
			f.items[id] = item
			n++
		}
	}
	return n, nil
}

func (f *fakeItems) ListDispatchable(_ context.Context, limit int) ([]erpsync.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []erpsync.QueueItem
	for i := 1; i <= f.seq && len(out) < limit; i++ {
		item, ok := f.items[fmt.Sprintf("item-%d", i)]
		if ok && item.Status == erpsync.StatusPending && item.RetryCount < item.MaxRetries {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeItems) List(ctx context.Context, filter erpsync.QueueFilter) ([]erpsync.QueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []erpsync.QueueItem
	for i := 1; i <= f.seq; i++ {
		item, ok := f.items[fmt.Sprintf("item-%d", i)]
		if !ok {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

type fakeRecords struct {
	mu        sync.Mutex
	employees map[string]erpsync.EmployeePull
	orders    map[string]erpsync.SalesOrderPull
	locations map[string]erpsync.LeaderLocation
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		employees: map[string]erpsync.EmployeePull{},
		orders:    map[string]erpsync.SalesOrderPull{},
		locations: map[string]erpsync.LeaderLocation{},
	}
}

func (f *fakeRecords) UpsertEmployeePull(_ context.Context, e erpsync.EmployeePull) (erpsync.EmployeePull, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.employees[e.Key()]
	if ok {
		e.ID = existing.ID
	} else {
		e.ID = "emp-" + e.Key()
	}
	f.employees[e.Key()] = e
	return e, !ok, nil
}

func (f *fakeRecords) UpsertSalesOrderPull(_ context.Context, s erpsync.SalesOrderPull) (erpsync.SalesOrderPull, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.orders[s.Key()]
	if ok {
		s.ID = existing.ID
	} else {
		s.ID = "so-" + s.Key()
	}
	f.orders[s.Key()] = s
	return s, !ok, nil
}

func (f *fakeRecords) UpsertLeaderLocation(_ context.Context, l erpsync.LeaderLocation) (erpsync.LeaderLocation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.locations[l.Key()]
	if ok {
		l.ID = existing.ID
	} else {
		l.ID = "loc-" + l.Key()
	}
	f.locations[l.Key()] = l
	return l, !ok, nil
}

func (f *fakeRecords) GetEmployeePull(_ context.Context, employee, company string) (erpsync.EmployeePull, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[employee+"|"+company]
	if !ok {
		return erpsync.EmployeePull{}, erpsync.ErrLeaderNotFound
	}
	return e, nil
}

func (f *fakeRecords) ListEmployeePulls(_ context.Context, origin string) ([]erpsync.EmployeePull, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []erpsync.EmployeePull
	for _, e := range f.employees {
		if e.Origin == origin {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRecords) ListSalesOrderPulls(_ context.Context, origin string) ([]erpsync.SalesOrderPull, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []erpsync.SalesOrderPull
	for _, s := range f.orders {
		if s.Origin == origin {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeTransport struct {
	mu       sync.Mutex
	sendErr  error
	sent     int
	exports  map[erpsync.DocType][]json.RawMessage
	fetchErr map[erpsync.DocType]error
}

func (f *fakeTransport) Send(context.Context, erpsync.Peer, erpsync.DocType, json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return f.sendErr
}

func (f *fakeTransport) Fetch(_ context.Context, _ erpsync.Peer, docType erpsync.DocType) ([]json.RawMessage, error) {
	if err := f.fetchErr[docType]; err != nil {
		return nil, err
	}
	return f.exports[docType], nil
}

var errPeerDown = errors.New("connection refused")

type fakeNotifications struct {
	notification.Service

	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (f *fakeNotifications) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}
