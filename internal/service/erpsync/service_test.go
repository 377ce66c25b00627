package erpsync

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type serviceFixture struct {
	*engineFixture
	records  *fakeRecords
	receiver *ReceiverImpl
	svc      *SyncServiceImpl
}

func newServiceFixture(peers ...erpsync.Peer) *serviceFixture {
	ef := newEngineFixture(peers...)
	records := newFakeRecords()
	receiver := NewReceiver(ef.peers, records)
	return &serviceFixture{
		engineFixture: ef,
		records:       records,
		receiver:      receiver,
		svc:           NewSyncService(ef.peers, records, ef.engine, receiver, ef.transport),
	}
}

func (f *serviceFixture) queued(t *testing.T) []erpsync.QueueItem {
	t.Helper()
	items, err := f.items.List(context.Background(), erpsync.QueueFilter{})
	require.NoError(t, err)
	return items
}

func TestSaveEmployeePull_OnlyTeamLeadersAreQueued(t *testing.T) {
	f := newServiceFixture(branchPeer())
	ctx := context.Background()

	_, err := f.svc.SaveEmployeePull(ctx, erpsync.EmployeePull{Employee: "E-1", Company: "ACME", EmployeeName: "Ravi"})
	require.NoError(t, err)
	assert.Empty(t, f.queued(t))

	saved, err := f.svc.SaveEmployeePull(ctx, erpsync.EmployeePull{Employee: "E-2", Company: "ACME", EmployeeName: "Asha", IsTeamLeader: true})
	require.NoError(t, err)
	assert.Equal(t, erpsync.OriginLocal, saved.Origin)

	_, err = f.svc.SaveEmployeePull(ctx, erpsync.EmployeePull{Employee: "E-2", Company: "ACME", EmployeeName: "Asha K", IsTeamLeader: true})
	require.NoError(t, err)

	items := f.queued(t)
	require.Len(t, items, 2)
	assert.Equal(t, erpsync.ActionCreate, items[0].Action)
	assert.Equal(t, erpsync.ActionUpdate, items[1].Action)
	assert.Equal(t, "E-2|ACME", items[0].DocumentKey)
}

func TestSaveEmployeePull_Validation(t *testing.T) {
	f := newServiceFixture(branchPeer())

	_, err := f.svc.SaveEmployeePull(context.Background(), erpsync.EmployeePull{Employee: "E-1"})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "company")
}

func TestReceivedRecordsAreNeverQueued(t *testing.T) {
	f := newServiceFixture(branchPeer())

	_, err := f.receiver.Receive(context.Background(), erpsync.Peer{Name: "hq"}, erpsync.DocTypeEmployeePull,
		json.RawMessage(`{"employee":"E-7","company":"ACME","employee_name":"Meera","is_team_leader":true}`))

	require.NoError(t, err)
	assert.Empty(t, f.queued(t))
}

func TestSaveLeaderLocation(t *testing.T) {
	f := newServiceFixture(branchPeer())
	ctx := context.Background()

	_, err := f.svc.SaveLeaderLocation(ctx, erpsync.LeaderLocation{Employee: "E-2", Company: "ACME", Latitude: 28.6})
	assert.ErrorIs(t, err, erpsync.ErrLeaderNotFound)

	_, err = f.svc.SaveEmployeePull(ctx, erpsync.EmployeePull{Employee: "E-2", Company: "ACME", EmployeeName: "Asha"})
	require.NoError(t, err)

	saved, err := f.svc.SaveLeaderLocation(ctx, erpsync.LeaderLocation{Employee: "E-2", Company: "ACME", Latitude: 28.6})
	require.NoError(t, err)
	assert.False(t, saved.RecordedAt.IsZero())

	items := f.queued(t)
	require.Len(t, items, 1)
	assert.Equal(t, erpsync.DocTypeLeaderLocation, items[0].DocType)
}

func TestCreatePeer_HashesInboundSecret(t *testing.T) {
	f := newServiceFixture()

	resp, err := f.svc.CreatePeer(context.Background(), erpsync.CreatePeerRequest{
		Name:          "branch",
		BaseURL:       " https://branch.example.com/ ",
		APIKey:        "k",
		APISecret:     "s",
		InboundKey:    "branch-key",
		InboundSecret: "a-long-inbound-secret",
		Enabled:       true,
		SyncEmployee:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://branch.example.com", resp.BaseURL)

	stored, err := f.peers.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "a-long-inbound-secret", stored.InboundSecretHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.InboundSecretHash), []byte("a-long-inbound-secret")))
}

func TestCreatePeer_RejectsBadURL(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.CreatePeer(context.Background(), erpsync.CreatePeerRequest{
		Name: "branch", BaseURL: "ftp://branch", APIKey: "k", APISecret: "s", InboundKey: "i", InboundSecret: "a-long-inbound-secret",
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "base_url")
}

func TestUpdatePeer(t *testing.T) {
	f := newServiceFixture(branchPeer())
	disabled := false
	url := "https://new.example.com/"

	resp, err := f.svc.UpdatePeer(context.Background(), erpsync.UpdatePeerRequest{ID: "peer-branch", Enabled: &disabled, BaseURL: &url})

	require.NoError(t, err)
	assert.False(t, resp.Enabled)
	assert.Equal(t, "https://new.example.com", resp.BaseURL)
	assert.True(t, resp.SyncEmployee)
}

func TestInitialPull(t *testing.T) {
	// Setup
	peer := branchPeer()
	peer.SyncSalesOrder = true
	f := newServiceFixture(peer)
	f.transport.exports = map[erpsync.DocType][]json.RawMessage{
		erpsync.DocTypeEmployeePull: {
			json.RawMessage(`{"employee":"E-1","company":"ACME","employee_name":"Asha","is_team_leader":true}`),
			json.RawMessage(`{"employee":"","company":"ACME"}`),
		},
	}
	f.transport.fetchErr = map[erpsync.DocType]error{erpsync.DocTypeSalesOrderPull: errPeerDown}

	// Act
	result, err := f.svc.InitialPull(context.Background(), peer.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported[erpsync.DocTypeEmployeePull])
	assert.Equal(t, 1, result.Failed[erpsync.DocTypeEmployeePull])
	assert.Contains(t, result.Errors[erpsync.DocTypeSalesOrderPull], "connection refused")
	assert.Equal(t, "branch", f.records.employees["E-1|ACME"].Origin)
	assert.Empty(t, f.queued(t))
	assert.Contains(t, f.peers.pulls, peer.ID)
}

func TestInitialPull_DisabledPeer(t *testing.T) {
	peer := branchPeer()
	peer.Enabled = false
	f := newServiceFixture(peer)

	_, err := f.svc.InitialPull(context.Background(), peer.ID)

	assert.ErrorIs(t, err, erpsync.ErrPeerDisabled)
}

func TestInitialPull_OnePerPeer(t *testing.T) {
	f := newServiceFixture(branchPeer())
	f.svc.pulling.Store("peer-branch", struct{}{})

	_, err := f.svc.InitialPull(context.Background(), "peer-branch")

	assert.ErrorIs(t, err, erpsync.ErrPullAlreadyInProgress)
}
