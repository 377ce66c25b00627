package erpsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

type ReceiverImpl struct {
	peers   erpsync.PeerRepository
	records erpsync.RecordRepository
}

func NewReceiver(peers erpsync.PeerRepository, records erpsync.RecordRepository) *ReceiverImpl {
	return &ReceiverImpl{peers: peers, records: records}
}

// Authenticate resolves the peer presenting key:secret.
func (r *ReceiverImpl) Authenticate(ctx context.Context, key, secret string) (erpsync.Peer, error) {
	if validator.IsEmpty(key) || validator.IsEmpty(secret) {
		return erpsync.Peer{}, erpsync.ErrInvalidAPIKey
	}
	peer, err := r.peers.GetByInboundKey(ctx, key)
	if err != nil {
		if errors.Is(err, erpsync.ErrPeerNotFound) {
			return erpsync.Peer{}, erpsync.ErrInvalidAPIKey
		}
		return erpsync.Peer{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(peer.InboundSecretHash), []byte(secret)); err != nil {
		return erpsync.Peer{}, erpsync.ErrInvalidAPIKey
	}
	if !peer.Enabled {
		return erpsync.Peer{}, erpsync.ErrPeerDisabled
	}
	return peer, nil
}

// decodeRecord accepts the record either as a JSON object or as a JSON string holding one.
func decodeRecord(data json.RawMessage, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return fmt.Errorf("%w: %v", erpsync.ErrInvalidPayload, err)
		}
		data = []byte(inner)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", erpsync.ErrInvalidPayload, err)
	}
	return nil
}

func required(fields map[string]string) error {
	if err := validateRequired(fields); err != nil {
		return fmt.Errorf("%w: %s", erpsync.ErrInvalidPayload, err.Error())
	}
	return nil
}

// Receive upserts a record sent by peer. Received records carry the peer's
// name as origin so they are never queued back out.
func (r *ReceiverImpl) Receive(ctx context.Context, peer erpsync.Peer, docType erpsync.DocType, data json.RawMessage) (string, error) {
	switch docType {
	case erpsync.DocTypeEmployeePull:
		var rec erpsync.EmployeePull
		if err := decodeRecord(data, &rec); err != nil {
			return "", err
		}
		if err := required(map[string]string{"employee": rec.Employee, "company": rec.Company}); err != nil {
			return "", err
		}
		rec.Origin = peer.Name
		saved, _, err := r.records.UpsertEmployeePull(ctx, rec)
		if err != nil {
			return "", fmt.Errorf("failed to save employee pull %s: %w", rec.Key(), err)
		}
		return saved.ID, nil

	case erpsync.DocTypeSalesOrderPull:
		var rec erpsync.SalesOrderPull
		if err := decodeRecord(data, &rec); err != nil {
			return "", err
		}
		if err := required(map[string]string{"sales_order": rec.SalesOrder, "company": rec.Company}); err != nil {
			return "", err
		}
		rec.Origin = peer.Name
		saved, _, err := r.records.UpsertSalesOrderPull(ctx, rec)
		if err != nil {
			return "", fmt.Errorf("failed to save sales order pull %s: %w", rec.Key(), err)
		}
		return saved.ID, nil

	case erpsync.DocTypeLeaderLocation:
		var rec erpsync.LeaderLocation
		if err := decodeRecord(data, &rec); err != nil {
			return "", err
		}
		if err := required(map[string]string{"employee": rec.Employee, "company": rec.Company}); err != nil {
			return "", err
		}
		if rec.RecordedAt.IsZero() {
			return "", fmt.Errorf("%w: recorded_at is required", erpsync.ErrInvalidPayload)
		}
		if _, err := r.records.GetEmployeePull(ctx, rec.Employee, rec.Company); err != nil {
			return "", err
		}
		rec.Origin = peer.Name
		saved, _, err := r.records.UpsertLeaderLocation(ctx, rec)
		if err != nil {
			return "", fmt.Errorf("failed to save leader location %s: %w", rec.Key(), err)
		}
		return saved.ID, nil
	}

	return "", erpsync.ErrUnknownDocType
}

// Export lists locally originated records for a peer's initial pull.
func (r *ReceiverImpl) Export(ctx context.Context, docType erpsync.DocType) ([]any, error) {
	switch docType {
	case erpsync.DocTypeEmployeePull:
		recs, err := r.records.ListEmployeePulls(ctx, erpsync.OriginLocal)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(recs))
		for i, rec := range recs {
			out[i] = rec
		}
		return out, nil

	case erpsync.DocTypeSalesOrderPull:
		recs, err := r.records.ListSalesOrderPulls(ctx, erpsync.OriginLocal)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(recs))
		for i, rec := range recs {
			out[i] = rec
		}
		return out, nil
	}

	return nil, erpsync.ErrUnknownDocType
}

// pull imports one doc type from peer and counts the outcome per record.
func (r *ReceiverImpl) pull(ctx context.Context, transport erpsync.Transport, peer erpsync.Peer, docType erpsync.DocType, result *erpsync.PullResult) {
	records, err := transport.Fetch(ctx, peer, docType)
	if err != nil {
		slog.Error("Sync: initial pull failed", "peer", peer.Name, "doctype", docType, "error", err)
		result.Errors[docType] = err.Error()
		return
	}
	for _, raw := range records {
		if _, err := r.Receive(ctx, peer, docType, raw); err != nil {
			slog.Warn("Sync: skipping pulled record", "peer", peer.Name, "doctype", docType, "error", err)
			result.Failed[docType]++
			continue
		}
		result.Imported[docType]++
	}
	slog.Info("Sync: initial pull imported records",
		"peer", peer.Name, "doctype", docType, "imported", result.Imported[docType], "failed", result.Failed[docType])
}
