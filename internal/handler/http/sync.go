package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SyncHandler interface {
	// Peer administration
	CreatePeer(w http.ResponseWriter, r *http.Request)
	UpdatePeer(w http.ResponseWriter, r *http.Request)
	ListPeers(w http.ResponseWriter, r *http.Request)
	InitialPull(w http.ResponseWriter, r *http.Request)

	// Queue
	ListQueue(w http.ResponseWriter, r *http.Request)
	RetryQueueItem(w http.ResponseWriter, r *http.Request)

	// Local records
	SaveEmployeePull(w http.ResponseWriter, r *http.Request)
	SaveSalesOrderPull(w http.ResponseWriter, r *http.Request)
	SaveLeaderLocation(w http.ResponseWriter, r *http.Request)

	// Inbound, authenticated by peer API key
	Receive(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type syncHandlerImpl struct {
	syncService erpsync.Service
	engine      erpsync.Engine
	receiver    erpsync.Receiver
}

func NewSyncHandler(syncService erpsync.Service, engine erpsync.Engine, receiver erpsync.Receiver) SyncHandler {
	return &syncHandlerImpl{
		syncService: syncService,
		engine:      engine,
		receiver:    receiver,
	}
}

// CreatePeer implements SyncHandler.
func (h *syncHandlerImpl) CreatePeer(w http.ResponseWriter, r *http.Request) {
	var req erpsync.CreatePeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePeer decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.syncService.CreatePeer(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Sync peer created successfully", result)
}

// UpdatePeer implements SyncHandler.
func (h *syncHandlerImpl) UpdatePeer(w http.ResponseWriter, r *http.Request) {
	var req erpsync.UpdatePeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdatePeer decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.syncService.UpdatePeer(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Sync peer updated successfully", result)
}

// ListPeers implements SyncHandler.
func (h *syncHandlerImpl) ListPeers(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncService.ListPeers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// InitialPull implements SyncHandler.
func (h *syncHandlerImpl) InitialPull(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Peer ID is required", nil)
		return
	}

	result, err := h.syncService.InitialPull(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Initial pull completed", result)
}

// ListQueue implements SyncHandler.
func (h *syncHandlerImpl) ListQueue(w http.ResponseWriter, r *http.Request) {
	filter := erpsync.QueueFilter{
		PeerID: getOptionalQueryParam(r, "peer_id"),
		Limit:  getIntQueryParam(r, "limit", 100),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := erpsync.Status(status)
		filter.Status = &s
	}
	if docType := r.URL.Query().Get("doctype"); docType != "" {
		d := erpsync.DocType(docType)
		if !d.Valid() {
			response.HandleError(w, erpsync.ErrUnknownDocType)
			return
		}
		filter.DocType = &d
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	result, err := h.engine.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RetryQueueItem implements SyncHandler.
func (h *syncHandlerImpl) RetryQueueItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Queue item ID is required", nil)
		return
	}

	item, err := h.engine.Retry(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Sync queue item retried", erpsync.NewQueueItemResponse(item))
}

// SaveEmployeePull implements SyncHandler.
func (h *syncHandlerImpl) SaveEmployeePull(w http.ResponseWriter, r *http.Request) {
	var req erpsync.EmployeePull
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveEmployeePull decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.syncService.SaveEmployeePull(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee pull saved successfully", result)
}

// SaveSalesOrderPull implements SyncHandler.
func (h *syncHandlerImpl) SaveSalesOrderPull(w http.ResponseWriter, r *http.Request) {
	var req erpsync.SalesOrderPull
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveSalesOrderPull decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.syncService.SaveSalesOrderPull(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Sales order pull saved successfully", result)
}

// SaveLeaderLocation implements SyncHandler.
func (h *syncHandlerImpl) SaveLeaderLocation(w http.ResponseWriter, r *http.Request) {
	var req erpsync.LeaderLocation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveLeaderLocation decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.syncService.SaveLeaderLocation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leader location saved successfully", result)
}

type receiveRequest struct {
	Data json.RawMessage `json:"data"`
}

// Receive implements SyncHandler.
func (h *syncHandlerImpl) Receive(w http.ResponseWriter, r *http.Request) {
	peer, ok := middleware.PeerFromContext(r.Context())
	if !ok {
		response.HandleError(w, erpsync.ErrInvalidAPIKey)
		return
	}

	docType := erpsync.DocType(chi.URLParam(r, "doctype"))
	if !docType.Valid() {
		response.HandleError(w, erpsync.ErrUnknownDocType)
		return
	}

	var req receiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Sync receive decode error", "peer", peer.Name, "error", err)
		response.HandleError(w, erpsync.ErrInvalidPayload)
		return
	}

	id, err := h.receiver.Receive(r.Context(), peer, docType, req.Data)
	if err != nil {
		slog.Warn("Sync: rejected inbound record", "peer", peer.Name, "doctype", docType, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Record synced successfully", map[string]string{"id": id})
}

// Export implements SyncHandler.
func (h *syncHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	docType := erpsync.DocType(chi.URLParam(r, "doctype"))
	if !docType.Valid() {
		response.HandleError(w, erpsync.ErrUnknownDocType)
		return
	}

	records, err := h.receiver.Export(r.Context(), docType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}
