/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATE FORMAT:
  All dates on the wire are "YYYY-MM-DD". Timestamps are RFC3339.

VALIDATION:
  Shape validation (dates parse, period is known) happens in handlers;
  everything domain-level is delegated to the validator and workflow.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/types.go: Domain request model
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// SubmitLeaveRequest is the request body for submitting a leave request.
type SubmitLeaveRequest struct {
	EmployeeID  string          `json:"employee_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	IsHalfDay   bool            `json:"is_half_day"`
	HalfDay     string          `json:"half_day_period,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	ContactInfo string          `json:"contact_info,omitempty"`
	Attachments []AttachmentDTO `json:"attachments,omitempty"`
}

// ActionRequest is the request body for approve/reject/cancel.
type ActionRequest struct {
	ActorID string `json:"actor_id"`
	Comment string `json:"comment,omitempty"`
}

// AttachmentDTO is supporting-document metadata on a request.
type AttachmentDTO struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	LeaveTypeID   string          `json:"leave_type_id"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	IsHalfDay     bool            `json:"is_half_day"`
	HalfDayPeriod string          `json:"half_day_period,omitempty"`
	NumberOfDays  string          `json:"number_of_days"`
	Reason        string          `json:"reason,omitempty"`
	ContactInfo   string          `json:"contact_info,omitempty"`
	Status        string          `json:"status"`
	AppliedOn     string          `json:"applied_on"`
	ActionedBy    string          `json:"actioned_by,omitempty"`
	ActionedOn    string          `json:"actioned_on,omitempty"`
	Comment       string          `json:"comment,omitempty"`
	Attachments   []AttachmentDTO `json:"attachments,omitempty"`
}

// BalanceDTO is the derived balance view for one employee/leave-type/year.
type BalanceDTO struct {
	EmployeeID  string `json:"employee_id"`
	LeaveTypeID string `json:"leave_type_id"`
	Year        int    `json:"year"`
	Entitled    string `json:"entitled"`
	Accrued     string `json:"accrued"`
	CarriedOver string `json:"carried_over"`
	Used        string `json:"used"`
	Available   string `json:"available"`
}

// PolicyDTO represents a leave policy in API requests and responses.
type PolicyDTO struct {
	LeaveTypeID         string `json:"leave_type_id"`
	DaysAllowed         string `json:"days_allowed"`
	Accrual             string `json:"accrual"`
	CarryForward        bool   `json:"carry_forward"`
	MaxCarryForward     string `json:"max_carry_forward,omitempty"`
	ProRated            bool   `json:"pro_rated"`
	ApplicableAfterDays int    `json:"applicable_after_days"`
	RequiresApproval    bool   `json:"requires_approval"`
	RequiresDocuments   bool   `json:"requires_documents"`
	AllowRetroactive    bool   `json:"allow_retroactive"`
	IsActive            bool   `json:"is_active"`
	Department          string `json:"department"`
	Version             int    `json:"version,omitempty"`
}

// HolidayDTO represents a holiday in API requests and responses.
type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// EmployeeDTO represents a directory entry in API requests and responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	HireDate   string `json:"hire_date"`
	Department string `json:"department"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRequestDTO(r leave.Request) LeaveRequestDTO {
	dto := LeaveRequestDTO{
		ID:            string(r.ID),
		EmployeeID:    r.EmployeeID,
		LeaveTypeID:   string(r.LeaveTypeID),
		StartDate:     r.StartDate.String(),
		EndDate:       r.EndDate.String(),
		IsHalfDay:     r.IsHalfDay,
		HalfDayPeriod: string(r.HalfDayPeriod),
		NumberOfDays:  r.NumberOfDays.String(),
		Reason:        r.Reason,
		ContactInfo:   r.ContactInfo,
		Status:        string(r.Status),
		AppliedOn:     r.AppliedOn.UTC().Format(time.RFC3339),
		ActionedBy:    r.ActionedBy,
		Comment:       r.Comment,
	}
	if r.ActionedOn != nil {
		dto.ActionedOn = r.ActionedOn.UTC().Format(time.RFC3339)
	}
	for _, a := range r.Attachments {
		dto.Attachments = append(dto.Attachments, AttachmentDTO{
			Name:        a.Name,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return dto
}

func toRequestDTOs(requests []leave.Request) []LeaveRequestDTO {
	dtos := make([]LeaveRequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

func toBalanceDTO(b leave.Balance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:  b.EmployeeID,
		LeaveTypeID: string(b.LeaveTypeID),
		Year:        b.Year,
		Entitled:    b.Entitled.String(),
		Accrued:     b.Accrued.String(),
		CarriedOver: b.CarriedOver.String(),
		Used:        b.Used.String(),
		Available:   b.Available().String(),
	}
}

func toPolicyDTO(p policy.LeavePolicy) PolicyDTO {
	dto := PolicyDTO{
		LeaveTypeID:         string(p.LeaveTypeID),
		DaysAllowed:         p.DaysAllowed.String(),
		Accrual:             string(p.Accrual),
		CarryForward:        p.CarryForward,
		ProRated:            p.ProRated,
		ApplicableAfterDays: p.ApplicableAfterDays,
		RequiresApproval:    p.RequiresApproval,
		RequiresDocuments:   p.RequiresDocuments,
		AllowRetroactive:    p.AllowRetroactive,
		IsActive:            p.IsActive,
		Department:          p.Department,
		Version:             p.Version,
	}
	if p.MaxCarryForward != nil {
		dto.MaxCarryForward = p.MaxCarryForward.String()
	}
	return dto
}

func fromPolicyDTO(dto PolicyDTO) (policy.LeavePolicy, error) {
	daysAllowed, err := decimal.NewFromString(dto.DaysAllowed)
	if err != nil {
		return policy.LeavePolicy{}, err
	}

	p := policy.LeavePolicy{
		LeaveTypeID:         policy.LeaveTypeID(dto.LeaveTypeID),
		DaysAllowed:         daysAllowed,
		Accrual:             policy.AccrualRate(dto.Accrual),
		CarryForward:        dto.CarryForward,
		ProRated:            dto.ProRated,
		ApplicableAfterDays: dto.ApplicableAfterDays,
		RequiresApproval:    dto.RequiresApproval,
		RequiresDocuments:   dto.RequiresDocuments,
		AllowRetroactive:    dto.AllowRetroactive,
		IsActive:            dto.IsActive,
		Department:          dto.Department,
		Version:             dto.Version,
	}
	if dto.MaxCarryForward != "" {
		cap, err := decimal.NewFromString(dto.MaxCarryForward)
		if err != nil {
			return policy.LeavePolicy{}, err
		}
		p.MaxCarryForward = &cap
	}
	if p.Department == "" {
		p.Department = policy.DepartmentAll
	}
	return p, nil
}

func toHolidayDTO(h calendar.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name}
}
