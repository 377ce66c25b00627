package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const peerColumns = `id, name, base_url, api_key, api_secret, inbound_key, inbound_secret_hash, enabled,
	sync_employee, sync_sales_order, sync_leader_location, last_pull_at, created_at, updated_at`

type peerRepository struct {
	db *database.DB
}

func NewPeerRepository(db *database.DB) erpsync.PeerRepository {
	return &peerRepository{db: db}
}

func scanPeer(row pgx.Row) (erpsync.Peer, error) {
	var p erpsync.Peer
	err := row.Scan(
		&p.ID, &p.Name, &p.BaseURL, &p.APIKey, &p.APISecret, &p.InboundKey, &p.InboundSecretHash, &p.Enabled,
		&p.SyncEmployee, &p.SyncSalesOrder, &p.SyncLeaderLocation, &p.LastPullAt, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *peerRepository) getOne(ctx context.Context, where string, arg interface{}) (erpsync.Peer, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPeer(q.QueryRow(ctx, `SELECT `+peerColumns+` FROM sync_peers WHERE `+where, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return erpsync.Peer{}, erpsync.ErrPeerNotFound
		}
		return erpsync.Peer{}, fmt.Errorf("failed to get sync peer: %w", err)
	}

	return p, nil
}

func (r *peerRepository) list(ctx context.Context, query string) ([]erpsync.Peer, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync peers: %w", err)
	}
	defer rows.Close()

	var peers []erpsync.Peer
	for rows.Next() {
		p, err := scanPeer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync peer: %w", err)
		}
		peers = append(peers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync peers: %w", err)
	}

	return peers, nil
}

// Create implements erpsync.PeerRepository.
func (r *peerRepository) Create(ctx context.Context, p erpsync.Peer) (erpsync.Peer, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sync_peers (
			id, name, base_url, api_key, api_secret, inbound_key, inbound_secret_hash, enabled,
			sync_employee, sync_sales_order, sync_leader_location
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + peerColumns

	created, err := scanPeer(q.QueryRow(ctx, query,
		p.Name, p.BaseURL, p.APIKey, p.APISecret, p.InboundKey, p.InboundSecretHash, p.Enabled,
		p.SyncEmployee, p.SyncSalesOrder, p.SyncLeaderLocation,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return erpsync.Peer{}, erpsync.ErrPeerNameExists
		}
		return erpsync.Peer{}, fmt.Errorf("failed to create sync peer: %w", err)
	}

	return created, nil
}

// Update implements erpsync.PeerRepository.
func (r *peerRepository) Update(ctx context.Context, p erpsync.Peer) (erpsync.Peer, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sync_peers
		SET base_url = $1, api_key = $2, api_secret = $3, inbound_secret_hash = $4, enabled = $5,
			sync_employee = $6, sync_sales_order = $7, sync_leader_location = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + peerColumns

	updated, err := scanPeer(q.QueryRow(ctx, query,
		p.BaseURL, p.APIKey, p.APISecret, p.InboundSecretHash, p.Enabled,
		p.SyncEmployee, p.SyncSalesOrder, p.SyncLeaderLocation, p.ID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return erpsync.Peer{}, erpsync.ErrPeerNotFound
		}
		return erpsync.Peer{}, fmt.Errorf("failed to update sync peer %s: %w", p.ID, err)
	}

	return updated, nil
}

// GetByID implements erpsync.PeerRepository.
func (r *peerRepository) GetByID(ctx context.Context, id string) (erpsync.Peer, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByInboundKey implements erpsync.PeerRepository.
func (r *peerRepository) GetByInboundKey(ctx context.Context, key string) (erpsync.Peer, error) {
	return r.getOne(ctx, "inbound_key = $1", key)
}

// List implements erpsync.PeerRepository.
func (r *peerRepository) List(ctx context.Context) ([]erpsync.Peer, error) {
	return r.list(ctx, `SELECT `+peerColumns+` FROM sync_peers ORDER BY name`)
}

// ListEnabled implements erpsync.PeerRepository.
func (r *peerRepository) ListEnabled(ctx context.Context) ([]erpsync.Peer, error) {
	return r.list(ctx, `SELECT `+peerColumns+` FROM sync_peers WHERE enabled ORDER BY name`)
}

// TouchLastPull implements erpsync.PeerRepository.
func (r *peerRepository) TouchLastPull(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE sync_peers SET last_pull_at = $1, updated_at = NOW() WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to record last pull for peer %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return erpsync.ErrPeerNotFound
	}

	return nil
}
