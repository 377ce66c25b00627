package erpsync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func inboundPeer(t *testing.T, enabled bool) erpsync.Peer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("inbound-secret-123"), bcrypt.MinCost)
	require.NoError(t, err)
	return erpsync.Peer{
		ID:                "peer-hq",
		Name:              "hq",
		InboundKey:        "hq-key",
		InboundSecretHash: string(hash),
		Enabled:           enabled,
	}
}

func TestReceiver_Authenticate(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		key     string
		secret  string
		wantErr error
	}{
		{name: "valid", enabled: true, key: "hq-key", secret: "inbound-secret-123"},
		{name: "wrong secret", enabled: true, key: "hq-key", secret: "nope", wantErr: erpsync.ErrInvalidAPIKey},
		{name: "unknown key", enabled: true, key: "other", secret: "inbound-secret-123", wantErr: erpsync.ErrInvalidAPIKey},
		{name: "empty", enabled: true, wantErr: erpsync.ErrInvalidAPIKey},
		{name: "disabled peer", enabled: false, key: "hq-key", secret: "inbound-secret-123", wantErr: erpsync.ErrPeerDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReceiver(newFakePeers(inboundPeer(t, tt.enabled)), newFakeRecords())

			peer, err := r.Authenticate(context.Background(), tt.key, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "hq", peer.Name)
		})
	}
}

func TestReceiver_Receive_IsIdempotentByBusinessKey(t *testing.T) {
	records := newFakeRecords()
	r := NewReceiver(newFakePeers(), records)
	peer := erpsync.Peer{Name: "hq"}
	payload := json.RawMessage(`{"employee":"E-1","company":"ACME","employee_name":"Asha","is_team_leader":true}`)

	first, err := r.Receive(context.Background(), peer, erpsync.DocTypeEmployeePull, payload)
	require.NoError(t, err)
	second, err := r.Receive(context.Background(), peer, erpsync.DocTypeEmployeePull, payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, records.employees, 1)
	assert.Equal(t, "hq", records.employees["E-1|ACME"].Origin)
}

func TestReceiver_Receive_AcceptsStringEncodedData(t *testing.T) {
	records := newFakeRecords()
	r := NewReceiver(newFakePeers(), records)

	_, err := r.Receive(context.Background(), erpsync.Peer{Name: "hq"}, erpsync.DocTypeSalesOrderPull,
		json.RawMessage(`"{\"sales_order\":\"SO-9\",\"company\":\"ACME\",\"grand_total\":\"1250.50\"}"`))

	require.NoError(t, err)
	assert.Equal(t, "1250.5", records.orders["SO-9|ACME"].GrandTotal.String())
}

func TestReceiver_Receive_LeaderLocationNeedsEmployeePull(t *testing.T) {
	records := newFakeRecords()
	r := NewReceiver(newFakePeers(), records)
	peer := erpsync.Peer{Name: "hq"}
	ping := json.RawMessage(`{"employee":"E-1","company":"ACME","latitude":28.5,"longitude":77.3,"recorded_at":"2026-03-10T09:00:00Z"}`)

	_, err := r.Receive(context.Background(), peer, erpsync.DocTypeLeaderLocation, ping)
	assert.ErrorIs(t, err, erpsync.ErrLeaderNotFound)

	_, _, err = records.UpsertEmployeePull(context.Background(), erpsync.EmployeePull{Employee: "E-1", Company: "ACME"})
	require.NoError(t, err)

	_, err = r.Receive(context.Background(), peer, erpsync.DocTypeLeaderLocation, ping)
	require.NoError(t, err)
	require.Len(t, records.locations, 1)
	for _, loc := range records.locations {
		assert.True(t, loc.RecordedAt.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)))
	}
}

func TestReceiver_Receive_InvalidPayloads(t *testing.T) {
	r := NewReceiver(newFakePeers(), newFakeRecords())
	peer := erpsync.Peer{Name: "hq"}

	_, err := r.Receive(context.Background(), peer, erpsync.DocTypeEmployeePull, json.RawMessage(`{"employee":"E-1"}`))
	assert.ErrorIs(t, err, erpsync.ErrInvalidPayload)

	_, err = r.Receive(context.Background(), peer, erpsync.DocTypeSalesOrderPull, json.RawMessage(`not json`))
	assert.ErrorIs(t, err, erpsync.ErrInvalidPayload)

	_, err = r.Receive(context.Background(), peer, "expense_pull", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, erpsync.ErrUnknownDocType)
}

func TestReceiver_Export_OnlyLocalRecords(t *testing.T) {
	records := newFakeRecords()
	ctx := context.Background()
	_, _, _ = records.UpsertEmployeePull(ctx, erpsync.EmployeePull{Employee: "E-1", Company: "ACME", Origin: erpsync.OriginLocal})
	_, _, _ = records.UpsertEmployeePull(ctx, erpsync.EmployeePull{Employee: "E-2", Company: "ACME", Origin: "hq"})
	r := NewReceiver(newFakePeers(), records)

	out, err := r.Export(ctx, erpsync.DocTypeEmployeePull)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "E-1", out[0].(erpsync.EmployeePull).Employee)

	_, err = r.Export(ctx, erpsync.DocTypeLeaderLocation)
	assert.ErrorIs(t, err, erpsync.ErrUnknownDocType)
}
