/*
handlers.go - HTTP API handlers for the leave management engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Requests:
    POST   /api/requests                 Submit a leave request
    GET    /api/requests/pending         List pending requests
    GET    /api/requests/{id}            Get a single request
    POST   /api/requests/{id}/approve    Approve a pending request
    POST   /api/requests/{id}/reject     Reject a pending request
    POST   /api/requests/{id}/cancel     Cancel a pending/approved request

  Employees:
    GET    /api/employees                List directory entries
    POST   /api/employees                Upsert a directory entry
    GET    /api/employees/{id}/requests  Request history
    GET    /api/employees/{id}/balance   Derived balance view

  Calendar:
    GET    /api/calendar                 Leaves intersecting a date range

  Policies:
    GET    /api/policies                 List all policies
    GET    /api/policies/{id}            Get one policy
    PUT    /api/policies/{id}            Create or update a policy

  Holidays:
    GET    /api/holidays                 Holidays in a date range
    POST   /api/holidays                 Add a holiday
    DELETE /api/holidays/{id}            Remove a holiday

ARCHITECTURE:
  Handler struct holds all dependencies behind small interfaces so tests
  can run against either the SQLite store or in-memory implementations.

ERROR HANDLING:
  Domain errors map to HTTP status by category:
  - 400: Validation failures (dates, eligibility, balance, documents)
  - 404: Unknown request/employee/policy
  - 409: Lost transition races, overlapping requests
  - 500: Storage or engine failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - leave/workflow.go: The state machine behind the action endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HolidayStore is the holiday calendar plus its admin operations.
type HolidayStore interface {
	calendar.HolidayCalendar
	PutHoliday(ctx context.Context, h calendar.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

// EmployeeStore is the directory plus its admin operations.
type EmployeeStore interface {
	leave.Directory
	PutEmployee(ctx context.Context, emp leave.Employee, name string) error
	ListEmployees(ctx context.Context) ([]leave.Employee, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workflow  *leave.Workflow
	Balances  *leave.BalanceEngine
	Index     *leave.CalendarIndex
	Requests  leave.RequestStore
	Policies  policy.Store
	Holidays  HolidayStore
	Employees EmployeeStore
	Log       *logrus.Logger
}

// NewHandler creates a handler over the given collaborators.
func NewHandler(workflow *leave.Workflow, balances *leave.BalanceEngine, index *leave.CalendarIndex,
	requests leave.RequestStore, policies policy.Store, holidays HolidayStore, employees EmployeeStore,
	log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Workflow:  workflow,
		Balances:  balances,
		Index:     index,
		Requests:  requests,
		Policies:  policies,
		Holidays:  holidays,
		Employees: employees,
		Log:       log,
	}
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// SubmitRequest validates and persists a new leave request.
func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	candidate, err := h.toCandidate(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	created, err := h.Workflow.Submit(r.Context(), candidate)
	if err != nil {
		h.writeDomainError(w, "Failed to submit request", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"request_id":  created.ID,
		"employee_id": created.EmployeeID,
		"days":        created.NumberOfDays.String(),
	}).Info("leave request submitted")

	writeJSON(w, http.StatusCreated, toRequestDTO(created))
}

func (h *Handler) toCandidate(req SubmitLeaveRequest) (leave.Candidate, error) {
	var span leave.Span
	if req.IsHalfDay {
		date, err := calendar.ParseDate(req.StartDate)
		if err != nil {
			return leave.Candidate{}, err
		}
		span = leave.HalfDay{Date: date, Period: leave.HalfDayPeriod(req.HalfDay)}
	} else {
		start, err := calendar.ParseDate(req.StartDate)
		if err != nil {
			return leave.Candidate{}, err
		}
		end, err := calendar.ParseDate(req.EndDate)
		if err != nil {
			return leave.Candidate{}, err
		}
		span = leave.FullDays{Start: start, End: end}
	}

	c := leave.Candidate{
		EmployeeID:  req.EmployeeID,
		LeaveTypeID: policy.LeaveTypeID(req.LeaveTypeID),
		Span:        span,
		Reason:      req.Reason,
		ContactInfo: req.ContactInfo,
	}
	for _, a := range req.Attachments {
		c.Attachments = append(c.Attachments, leave.Attachment{
			Name:        a.Name,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return c, nil
}

// GetRequest returns a single leave request.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	req, err := h.Requests.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

// ListPendingRequests returns all requests awaiting approval.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Requests.ByStatus(r.Context(), leave.StatusPending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(pending))
}

// ApproveRequest transitions a pending request to approved.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "approve", func(ctx context.Context, id leave.RequestID, a ActionRequest) (leave.Request, error) {
		return h.Workflow.Approve(ctx, id, a.ActorID, a.Comment)
	})
}

// RejectRequest transitions a pending request to rejected.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "reject", func(ctx context.Context, id leave.RequestID, a ActionRequest) (leave.Request, error) {
		return h.Workflow.Reject(ctx, id, a.ActorID, a.Comment)
	})
}

// CancelRequest cancels a pending or future approved request.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "cancel", func(ctx context.Context, id leave.RequestID, a ActionRequest) (leave.Request, error) {
		return h.Workflow.Cancel(ctx, id, a.ActorID)
	})
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request, verb string,
	fn func(ctx context.Context, id leave.RequestID, a ActionRequest) (leave.Request, error)) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var body ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ActorID == "" {
		writeError(w, http.StatusBadRequest, "actor_id is required", nil)
		return
	}

	updated, err := fn(r.Context(), id, body)
	if err != nil {
		h.writeDomainError(w, "Failed to "+verb+" request", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"request_id": updated.ID,
		"actor_id":   body.ActorID,
		"status":     updated.Status,
	}).Info("leave request " + verb + "ed")

	writeJSON(w, http.StatusOK, toRequestDTO(updated))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all directory entries.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{
			ID:         e.ID,
			HireDate:   e.HireDate.String(),
			Department: e.Department,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutEmployee creates or updates a directory entry.
func (h *Handler) PutEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hireDate, err := calendar.ParseDate(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp := leave.Employee{ID: req.ID, HireDate: hireDate, Department: req.Department}
	if err := h.Employees.PutEmployee(r.Context(), emp, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// EmployeeRequests returns the full request history for an employee.
func (h *Handler) EmployeeRequests(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	requests, err := h.Requests.ByEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GetBalance returns the derived balance for an employee.
// Query params: leave_type (required), year (defaults to current year).
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	leaveType := r.URL.Query().Get("leave_type")
	if leaveType == "" {
		writeError(w, http.StatusBadRequest, "leave_type query parameter is required", nil)
		return
	}

	year := calendar.Today().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	balance, err := h.Balances.ComputeBalance(r.Context(), employeeID, policy.LeaveTypeID(leaveType), year)
	if err != nil {
		h.writeDomainError(w, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// CalendarRange returns leaves intersecting [from, to].
// Query params: from, to (required), employee_id, leave_type, active.
func (h *Handler) CalendarRange(w http.ResponseWriter, r *http.Request) {
	from, err := calendar.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := calendar.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	filter := leave.Filter{
		EmployeeID:  r.URL.Query().Get("employee_id"),
		LeaveTypeID: policy.LeaveTypeID(r.URL.Query().Get("leave_type")),
	}
	if r.URL.Query().Get("active") == "true" {
		filter.Statuses = []leave.Status{leave.StatusPending, leave.StatusApproved}
	}

	leaves, err := h.Index.LeavesInRange(r.Context(), from, to, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(leaves))
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ListPolicies returns all leave policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Policies.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	dtos := make([]PolicyDTO, len(policies))
	for i, p := range policies {
		dtos[i] = toPolicyDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPolicy returns one leave policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := policy.LeaveTypeID(chi.URLParam(r, "id"))

	p, err := h.Policies.Policy(r.Context(), id)
	if errors.Is(err, policy.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Policy not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get policy", err)
		return
	}
	writeJSON(w, http.StatusOK, toPolicyDTO(p))
}

// PutPolicy creates or updates a leave policy. The id in the URL wins over
// any id in the body.
func (h *Handler) PutPolicy(w http.ResponseWriter, r *http.Request) {
	var dto PolicyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	dto.LeaveTypeID = chi.URLParam(r, "id")

	p, err := fromPolicyDTO(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}

	stored, err := h.Policies.Put(r.Context(), p)
	if err != nil {
		if errors.Is(err, policy.ErrNegativeDaysAllowed) ||
			errors.Is(err, policy.ErrNegativeApplicability) ||
			errors.Is(err, policy.ErrCarryForwardCap) {
			writeError(w, http.StatusBadRequest, "Invalid policy", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to store policy", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"leave_type": stored.LeaveTypeID,
		"version":    stored.Version,
	}).Info("policy stored")

	writeJSON(w, http.StatusOK, toPolicyDTO(stored))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays in a range; defaults to the current year.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today()
	from, to := calendar.StartOfYear(today.Year()), calendar.EndOfYear(today.Year())

	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = calendar.ParseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = calendar.ParseDate(raw); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}

	holidays, err := h.Holidays.HolidaysInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday to the calendar.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var dto HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := calendar.ParseDate(dto.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	holiday := calendar.Holiday{ID: dto.ID, Date: date, Name: dto.Name}
	if err := h.Holidays.PutHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday from the calendar.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Holidays.DeleteHoliday(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps engine errors to HTTP status by category.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case leave.IsNotFound(err) || errors.Is(err, policy.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, leave.ErrOverlappingRequest) || leave.IsRetryable(err):
		writeError(w, http.StatusConflict, message, err)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
