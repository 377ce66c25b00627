package erpsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// pullOrder is the import order of an initial pull. Leader locations are not exported.
var pullOrder = []erpsync.DocType{erpsync.DocTypeEmployeePull, erpsync.DocTypeSalesOrderPull}

type SyncServiceImpl struct {
	peers     erpsync.PeerRepository
	records   erpsync.RecordRepository
	engine    erpsync.Engine
	receiver  *ReceiverImpl
	transport erpsync.Transport

	pulling sync.Map
	now     func() time.Time
}

func NewSyncService(
	peers erpsync.PeerRepository,
	records erpsync.RecordRepository,
	engine erpsync.Engine,
	receiver *ReceiverImpl,
	transport erpsync.Transport,
) *SyncServiceImpl {
	return &SyncServiceImpl{
		peers:     peers,
		records:   records,
		engine:    engine,
		receiver:  receiver,
		transport: transport,
		now:       time.Now,
	}
}

func actionFor(created bool) erpsync.Action {
	if created {
		return erpsync.ActionCreate
	}
	return erpsync.ActionUpdate
}

// enqueue replicates a local write. Queueing failures do not undo the write.
func (s *SyncServiceImpl) enqueue(ctx context.Context, docType erpsync.DocType, key string, created bool, record any) {
	if _, err := s.engine.EnqueueRecord(ctx, docType, key, actionFor(created), record); err != nil {
		slog.Error("Sync: failed to queue local record", "doctype", docType, "document_key", key, "error", err)
	}
}

// SaveEmployeePull stores a local employee record. Only team leaders are replicated.
func (s *SyncServiceImpl) SaveEmployeePull(ctx context.Context, req erpsync.EmployeePull) (erpsync.EmployeePull, error) {
	if err := validateRequired(map[string]string{"employee": req.Employee, "company": req.Company, "employee_name": req.EmployeeName}); err != nil {
		return erpsync.EmployeePull{}, err
	}
	req.Origin = erpsync.OriginLocal

	saved, created, err := s.records.UpsertEmployeePull(ctx, req)
	if err != nil {
		return erpsync.EmployeePull{}, fmt.Errorf("failed to save employee pull: %w", err)
	}
	if saved.IsTeamLeader {
		s.enqueue(ctx, erpsync.DocTypeEmployeePull, saved.Key(), created, saved)
	}
	return saved, nil
}

func (s *SyncServiceImpl) SaveSalesOrderPull(ctx context.Context, req erpsync.SalesOrderPull) (erpsync.SalesOrderPull, error) {
	if err := validateRequired(map[string]string{"sales_order": req.SalesOrder, "company": req.Company, "customer": req.Customer}); err != nil {
		return erpsync.SalesOrderPull{}, err
	}
	req.Origin = erpsync.OriginLocal

	saved, created, err := s.records.UpsertSalesOrderPull(ctx, req)
	if err != nil {
		return erpsync.SalesOrderPull{}, fmt.Errorf("failed to save sales order pull: %w", err)
	}
	s.enqueue(ctx, erpsync.DocTypeSalesOrderPull, saved.Key(), created, saved)
	return saved, nil
}

// SaveLeaderLocation stores a location ping of a known team leader.
func (s *SyncServiceImpl) SaveLeaderLocation(ctx context.Context, req erpsync.LeaderLocation) (erpsync.LeaderLocation, error) {
	if err := validateRequired(map[string]string{"employee": req.Employee, "company": req.Company}); err != nil {
		return erpsync.LeaderLocation{}, err
	}
	if req.RecordedAt.IsZero() {
		req.RecordedAt = s.now()
	}
	if _, err := s.records.GetEmployeePull(ctx, req.Employee, req.Company); err != nil {
		return erpsync.LeaderLocation{}, err
	}
	req.Origin = erpsync.OriginLocal

	saved, created, err := s.records.UpsertLeaderLocation(ctx, req)
	if err != nil {
		return erpsync.LeaderLocation{}, fmt.Errorf("failed to save leader location: %w", err)
	}
	s.enqueue(ctx, erpsync.DocTypeLeaderLocation, saved.Key(), created, saved)
	return saved, nil
}

func validateRequired(fields map[string]string) error {
	var errs validator.ValidationErrors
	for name, value := range fields {
		if validator.IsEmpty(value) {
			errs = append(errs, validator.ValidationError{Field: name, Message: name + " is required"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash inbound secret: %w", err)
	}
	return string(hash), nil
}

func (s *SyncServiceImpl) CreatePeer(ctx context.Context, req erpsync.CreatePeerRequest) (erpsync.PeerResponse, error) {
	if err := req.Validate(); err != nil {
		return erpsync.PeerResponse{}, err
	}
	hash, err := hashSecret(req.InboundSecret)
	if err != nil {
		return erpsync.PeerResponse{}, err
	}

	peer, err := s.peers.Create(ctx, erpsync.Peer{
		Name:               req.Name,
		BaseURL:            req.BaseURL,
		APIKey:             req.APIKey,
		APISecret:          req.APISecret,
		InboundKey:         req.InboundKey,
		InboundSecretHash:  hash,
		Enabled:            req.Enabled,
		SyncEmployee:       req.SyncEmployee,
		SyncSalesOrder:     req.SyncSalesOrder,
		SyncLeaderLocation: req.SyncLeaderLocation,
	})
	if err != nil {
		return erpsync.PeerResponse{}, err
	}
	slog.Info("Sync: peer created", "peer", peer.Name, "enabled", peer.Enabled)
	return erpsync.NewPeerResponse(peer), nil
}

func (s *SyncServiceImpl) UpdatePeer(ctx context.Context, req erpsync.UpdatePeerRequest) (erpsync.PeerResponse, error) {
	if err := req.Validate(); err != nil {
		return erpsync.PeerResponse{}, err
	}
	peer, err := s.peers.GetByID(ctx, req.ID)
	if err != nil {
		return erpsync.PeerResponse{}, err
	}

	if req.BaseURL != nil {
		peer.BaseURL = *req.BaseURL
	}
	if req.APIKey != nil {
		peer.APIKey = *req.APIKey
	}
	if req.APISecret != nil {
		peer.APISecret = *req.APISecret
	}
	if req.InboundSecret != nil {
		hash, err := hashSecret(*req.InboundSecret)
		if err != nil {
			return erpsync.PeerResponse{}, err
		}
		peer.InboundSecretHash = hash
	}
	if req.Enabled != nil {
		peer.Enabled = *req.Enabled
	}
	if req.SyncEmployee != nil {
		peer.SyncEmployee = *req.SyncEmployee
	}
	if req.SyncSalesOrder != nil {
		peer.SyncSalesOrder = *req.SyncSalesOrder
	}
	if req.SyncLeaderLocation != nil {
		peer.SyncLeaderLocation = *req.SyncLeaderLocation
	}

	updated, err := s.peers.Update(ctx, peer)
	if err != nil {
		return erpsync.PeerResponse{}, err
	}
	return erpsync.NewPeerResponse(updated), nil
}

func (s *SyncServiceImpl) ListPeers(ctx context.Context) ([]erpsync.PeerResponse, error) {
	peers, err := s.peers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]erpsync.PeerResponse, len(peers))
	for i, p := range peers {
		out[i] = erpsync.NewPeerResponse(p)
	}
	return out, nil
}

// InitialPull imports the peer's exported employee and sales order records.
// Only one pull per peer runs at a time.
func (s *SyncServiceImpl) InitialPull(ctx context.Context, peerID string) (erpsync.PullResult, error) {
	peer, err := s.peers.GetByID(ctx, peerID)
	if err != nil {
		return erpsync.PullResult{}, err
	}
	if !peer.Enabled {
		return erpsync.PullResult{}, erpsync.ErrPeerDisabled
	}

	if _, busy := s.pulling.LoadOrStore(peer.ID, struct{}{}); busy {
		return erpsync.PullResult{}, erpsync.ErrPullAlreadyInProgress
	}
	defer s.pulling.Delete(peer.ID)

	result := erpsync.PullResult{
		PeerID:   peer.ID,
		Imported: map[erpsync.DocType]int{},
		Failed:   map[erpsync.DocType]int{},
		Errors:   map[erpsync.DocType]string{},
	}
	for _, docType := range pullOrder {
		if !peer.Syncs(docType) {
			continue
		}
		s.receiver.pull(ctx, s.transport, peer, docType, &result)
	}

	if err := s.peers.TouchLastPull(ctx, peer.ID, s.now()); err != nil && !errors.Is(err, erpsync.ErrPeerNotFound) {
		return result, fmt.Errorf("failed to record pull time: %w", err)
	}
	return result, nil
}
