package erpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
)

// Client sends records to peer instances and pulls their exports.
type Client struct {
	HTTP        *http.Client
	SendTimeout time.Duration
	PullTimeout time.Duration
}

// New creates a client with the given per-call timeouts.
func New(sendTimeout, pullTimeout time.Duration) *Client {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	if pullTimeout <= 0 {
		pullTimeout = 60 * time.Second
	}
	return &Client{
		HTTP:        &http.Client{},
		SendTimeout: sendTimeout,
		PullTimeout: pullTimeout,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// maxErrorBody caps how much of a rejected response lands in error_log.
const maxErrorBody = 4 << 10

// maxSendResponse caps the acknowledgement read after a delivery.
const maxSendResponse = 1 << 20

func errorBody(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(raw)
}

func authorization(peer erpsync.Peer) string {
	return fmt.Sprintf("token %s:%s", peer.APIKey, peer.APISecret)
}

// Send posts one record. Only HTTP 200 with success=true counts as delivered.
func (c *Client) Send(ctx context.Context, peer erpsync.Peer, docType erpsync.DocType, payload json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, c.SendTimeout)
	defer cancel()

	body, err := json.Marshal(erpsync.Envelope{Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/sync/receive/%s", peer.BaseURL, docType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization(peer))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("peer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status code %d: %s", erpsync.ErrRemoteRejected, resp.StatusCode, errorBody(resp.Body))
	}

	var out envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSendResponse)).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", erpsync.ErrRemoteRejected, out.Message)
	}
	return nil
}

// Fetch downloads the peer's export of docType.
func (c *Client) Fetch(ctx context.Context, peer erpsync.Peer, docType erpsync.DocType) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.PullTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/v1/sync/export/%s", peer.BaseURL, docType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", authorization(peer))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("peer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status code %d: %s", erpsync.ErrRemoteRejected, resp.StatusCode, errorBody(resp.Body))
	}

	var out envelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("%w: %s", erpsync.ErrRemoteRejected, out.Message)
	}

	var records []json.RawMessage
	if len(out.Data) > 0 && string(out.Data) != "null" {
		if err := json.Unmarshal(out.Data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode export: %w", err)
		}
	}
	return records, nil
}
