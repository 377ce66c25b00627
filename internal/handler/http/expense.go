package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const maxInvoiceUpload = 10 << 20

type ExpenseHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListMy(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Invoice(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Post(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)
}

type expenseHandlerImpl struct {
	expenseService expense.ExpenseService
}

func NewExpenseHandler(expenseService expense.ExpenseService) ExpenseHandler {
	return &expenseHandlerImpl{expenseService: expenseService}
}

// Create implements ExpenseHandler. The claim arrives as multipart form
// data: a JSON "data" field and an optional "invoice" file.
func (h *expenseHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxInvoiceUpload+1<<20)
	if err := r.ParseMultipartForm(maxInvoiceUpload); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		response.BadRequest(w, "Field 'data' is required", nil)
		return
	}

	var req expense.CreateExpenseRequest
	if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
		slog.Error("Failed to unmarshal JSON data", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	file, fileHeader, err := r.FormFile("invoice")
	if err != nil && err != http.ErrMissingFile {
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	if file != nil {
		defer file.Close()
		req.Invoice = file
		req.InvoiceName = fileHeader.Filename
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.expenseService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Expense created successfully", result)
}

// ListMy implements ExpenseHandler.
func (h *expenseHandlerImpl) ListMy(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.expenseService.ListMy)
}

// ListPending implements ExpenseHandler.
func (h *expenseHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.expenseService.ListPending)
}

type expenseLister func(ctx context.Context, actor user.Actor, filter expense.ExpenseFilter) (expense.ExpenseListResponse, error)

func (h *expenseHandlerImpl) list(w http.ResponseWriter, r *http.Request, fn expenseLister) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter := expense.ExpenseFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 10),
	}
	if status := getOptionalQueryParam(r, "status"); status != nil {
		s := expense.Status(*status)
		filter.Status = &s
	}

	result, err := fn(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Expenses, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.Total,
		TotalPages: result.TotalPages(),
	})
}

// Get implements ExpenseHandler.
func (h *expenseHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.expenseService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Invoice implements ExpenseHandler. It streams the stored invoice file.
func (h *expenseHandlerImpl) Invoice(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	rc, name, err := h.expenseService.OpenInvoice(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Expense invoice: stream interrupted", "file", name, "error", err)
	}
}

// Approve implements ExpenseHandler.
func (h *expenseHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req expense.ApproveExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Approve expense decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.expenseService.Approve(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expense approved successfully", result)
}

// Reject implements ExpenseHandler.
func (h *expenseHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.expenseService.Reject, "Expense rejected successfully")
}

// Cancel implements ExpenseHandler.
func (h *expenseHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.expenseService.Cancel, "Expense cancelled successfully")
}

type expenseDecision func(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error)

func (h *expenseHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn expenseDecision, message string) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := fn(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// Post implements ExpenseHandler.
func (h *expenseHandlerImpl) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.expenseService.Post(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Journal entry created successfully", result)
}

// ListTypes implements ExpenseHandler.
func (h *expenseHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.expenseService.ListTypes(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
