package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	employeeActor = user.Actor{UserID: "u-emp", EmployeeID: "e1", CompanyID: "c1", Role: user.RoleEmployee}
	managerActor  = user.Actor{UserID: "u-mgr", EmployeeID: "e9", CompanyID: "c1", Role: user.RoleManager}
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// serve mounts handler on pattern behind a stub that injects actor.
func serve(t *testing.T, actor *user.Actor, method, pattern, target string, body string, handler http.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if actor != nil {
				req = req.WithContext(middleware.WithActor(req.Context(), *actor))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Method(method, pattern, handler)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

type fakeCheckinService struct {
	checkin.CheckinService
	approveReq checkin.ApproveCheckinRequest
	approveErr error
}

func (f *fakeCheckinService) Approve(_ context.Context, _ user.Actor, req checkin.ApproveCheckinRequest) (checkin.ApprovalResponse, error) {
	f.approveReq = req
	if f.approveErr != nil {
		return checkin.ApprovalResponse{}, f.approveErr
	}
	return checkin.ApprovalResponse{
		Checkin:          checkin.CheckinResponse{ID: req.ID, Approved: true},
		AttendanceStatus: "Present",
	}, nil
}

func (f *fakeCheckinService) Create(_ context.Context, actor user.Actor, req checkin.CreateCheckinRequest) (checkin.CheckinResponse, error) {
	return checkin.CheckinResponse{ID: "ck1", EmployeeID: actor.EmployeeID, LogType: req.LogType}, nil
}

func TestCheckinHandler_Approve_WithoutBody(t *testing.T) {
	svc := &fakeCheckinService{}
	h := NewCheckinHandler(svc)

	rec, env := serve(t, &managerActor, http.MethodPost, "/checkins/{id}/approve", "/checkins/ck1/approve", "", h.Approve)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "ck1", svc.approveReq.ID)
	assert.Nil(t, svc.approveReq.LogTime)
}

func TestCheckinHandler_Approve_OverrideTime(t *testing.T) {
	svc := &fakeCheckinService{}
	h := NewCheckinHandler(svc)

	rec, _ := serve(t, &managerActor, http.MethodPost, "/checkins/{id}/approve", "/checkins/ck1/approve",
		`{"log_time":"2026-03-02T09:05:00+05:30"}`, h.Approve)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.approveReq.ParsedTime())
	assert.Equal(t, 9, svc.approveReq.ParsedTime().Hour())
}

func TestCheckinHandler_Approve_AlreadyDecided(t *testing.T) {
	svc := &fakeCheckinService{approveErr: checkin.ErrAlreadyDecided}
	h := NewCheckinHandler(svc)

	rec, env := serve(t, &managerActor, http.MethodPost, "/checkins/{id}/approve", "/checkins/ck1/approve", "", h.Approve)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestCheckinHandler_Create_InvalidJSON(t *testing.T) {
	h := NewCheckinHandler(&fakeCheckinService{})

	rec, _ := serve(t, &employeeActor, http.MethodPost, "/checkins", "/checkins", "{", h.Create)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckinHandler_Create_MissingActor(t *testing.T) {
	h := NewCheckinHandler(&fakeCheckinService{})

	rec, _ := serve(t, nil, http.MethodPost, "/checkins", "/checkins", `{"log_type":"IN"}`, h.Create)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	filter attendance.AttendanceFilter
	actor  user.Actor
}

func (f *fakeAttendanceService) ListAttendance(_ context.Context, actor user.Actor, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	f.actor = actor
	f.filter = filter
	return attendance.ListAttendanceResponse{Page: filter.Page, Limit: filter.Limit}, nil
}

func (f *fakeAttendanceService) Process(_ context.Context, _ user.Actor, req attendance.ProcessRequest) (attendance.ProcessResponse, error) {
	return attendance.ProcessResponse{}, attendance.ErrRunAlreadyComplete
}

func TestAttendanceHandler_List_PassesFilters(t *testing.T) {
	svc := &fakeAttendanceService{}
	h := NewAttendanceHandler(svc)

	rec, _ := serve(t, &managerActor, http.MethodGet, "/attendances", "/attendances?employee_id=e1&from=2026-03-01&page=2", "", h.List)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.EmployeeID)
	assert.Equal(t, "e1", *svc.filter.EmployeeID)
	require.NotNil(t, svc.filter.From)
	assert.Equal(t, "2026-03-01", *svc.filter.From)
	assert.Nil(t, svc.filter.To)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Equal(t, managerActor, svc.actor)
}

func TestAttendanceHandler_Process_CompletedRunConflicts(t *testing.T) {
	h := NewAttendanceHandler(&fakeAttendanceService{})

	rec, _ := serve(t, &managerActor, http.MethodPost, "/attendances/process", "/attendances/process", `{"date":"2026-03-02"}`, h.Process)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

type fakeLeaveService struct {
	leave.LeaveService
	employeeID string
	asOf       time.Time
}

func (f *fakeLeaveService) GetBalance(_ context.Context, employeeID, _ string, asOf time.Time) (decimal.Decimal, error) {
	f.employeeID = employeeID
	f.asOf = asOf
	return decimal.NewFromFloat(7.5), nil
}

func TestLeaveHandler_GetBalance(t *testing.T) {
	tests := []struct {
		name         string
		actor        user.Actor
		query        string
		wantCode     int
		wantEmployee string
	}{
		{"own balance", employeeActor, "leave_type_id=lt1", http.StatusOK, "e1"},
		{"employee asks for someone else", employeeActor, "leave_type_id=lt1&employee_id=e2", http.StatusForbidden, ""},
		{"manager asks for employee", managerActor, "leave_type_id=lt1&employee_id=e2", http.StatusOK, "e2"},
		{"missing leave type", employeeActor, "", http.StatusUnprocessableEntity, ""},
		{"bad as_of", employeeActor, "leave_type_id=lt1&as_of=03-2026", http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLeaveService{}
			h := NewLeaveHandler(svc)

			rec, env := serve(t, &tt.actor, http.MethodGet, "/leaves/balance", "/leaves/balance?"+tt.query, "", h.GetBalance)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantEmployee, svc.employeeID)
			if tt.wantCode == http.StatusOK {
				var balance leave.BalanceResponse
				require.NoError(t, json.Unmarshal(env.Data, &balance))
				assert.Equal(t, "7.5", balance.Balance)
			}
		})
	}
}

func TestLeaveHandler_GetBalance_AsOf(t *testing.T) {
	svc := &fakeLeaveService{}
	h := NewLeaveHandler(svc)

	rec, _ := serve(t, &employeeActor, http.MethodGet, "/leaves/balance", "/leaves/balance?leave_type_id=lt1&as_of=2026-02-10", "", h.GetBalance)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-02-10", svc.asOf.Format("2006-01-02"))
}

type fakeSyncReceiver struct {
	erpsync.Receiver
	docType erpsync.DocType
	data    json.RawMessage
	err     error
}

func (f *fakeSyncReceiver) Receive(_ context.Context, _ erpsync.Peer, docType erpsync.DocType, data json.RawMessage) (string, error) {
	f.docType = docType
	f.data = data
	return "rec-1", f.err
}

func (f *fakeSyncReceiver) Export(_ context.Context, _ erpsync.DocType) ([]any, error) {
	return []any{erpsync.SalesOrderPull{SalesOrder: "SO-1", Company: "ACME"}}, nil
}

// servePeer mounts a sync inbound handler with an authenticated peer.
func servePeer(method, pattern, target, body string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	receiver := &authOnlyReceiver{}
	r := chi.NewRouter()
	r.Use(middleware.SyncKeyRequired(receiver))
	r.Method(method, pattern, handler)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "token k1:secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type authOnlyReceiver struct {
	erpsync.Receiver
}

func (authOnlyReceiver) Authenticate(_ context.Context, _, _ string) (erpsync.Peer, error) {
	return erpsync.Peer{ID: "p1", Name: "branch-a", Enabled: true}, nil
}

func TestSyncHandler_Receive(t *testing.T) {
	receiver := &fakeSyncReceiver{}
	h := NewSyncHandler(nil, nil, receiver)

	rec := servePeer(http.MethodPost, "/sync/receive/{doctype}", "/sync/receive/employee_pull",
		`{"data":{"employee":"E1","company":"ACME"}}`, h.Receive)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, erpsync.DocTypeEmployeePull, receiver.docType)
	assert.JSONEq(t, `{"employee":"E1","company":"ACME"}`, string(receiver.data))
}

func TestSyncHandler_Receive_UnknownDocType(t *testing.T) {
	h := NewSyncHandler(nil, nil, &fakeSyncReceiver{})

	rec := servePeer(http.MethodPost, "/sync/receive/{doctype}", "/sync/receive/invoice", `{"data":{}}`, h.Receive)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncHandler_Receive_LeaderMissing(t *testing.T) {
	h := NewSyncHandler(nil, nil, &fakeSyncReceiver{err: erpsync.ErrLeaderNotFound})

	rec := servePeer(http.MethodPost, "/sync/receive/{doctype}", "/sync/receive/leader_location", `{"data":{}}`, h.Receive)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncHandler_Export(t *testing.T) {
	h := NewSyncHandler(nil, nil, &fakeSyncReceiver{})

	rec := servePeer(http.MethodGet, "/sync/export/{doctype}", "/sync/export/sales_order_pull", "", h.Export)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var records []erpsync.SalesOrderPull
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "SO-1", records[0].SalesOrder)
}
