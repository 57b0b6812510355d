/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements the request store, policy store, holiday calendar, and
  employee directory over one SQLite database. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  leave.RequestStore:       Request persistence with CAS status updates
  leave.Directory:          Employee directory
  policy.Store:             Leave policy configuration
  calendar.HolidayCalendar: Holiday lookup

STATUS TRANSITIONS:
  UpdateStatus issues a conditional UPDATE guarded on the current status
  (UPDATE ... WHERE id = ? AND status = ?). Zero rows affected with an
  existing row means a concurrent writer won; the caller gets
  leave.ErrConflict and nothing has changed. This is the storage half of
  the all-or-nothing transition guarantee.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, a single writer at a time, better crash
  recovery.

USAGE:
  st, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - leave/store.go: Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/policy"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Leave requests
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		is_half_day BOOLEAN NOT NULL DEFAULT FALSE,
		half_day_period TEXT,
		number_of_days TEXT NOT NULL,
		reason TEXT,
		contact_info TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		applied_on TEXT NOT NULL,
		actioned_by TEXT,
		actioned_on TEXT,
		comment TEXT,
		attachments_json TEXT
	);

	-- Hot path: overlap checks and balance aggregation scan by employee + dates
	CREATE INDEX IF NOT EXISTS idx_requests_employee_dates
		ON leave_requests(employee_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);
	CREATE INDEX IF NOT EXISTS idx_requests_dates
		ON leave_requests(start_date, end_date);

	-- Leave policies (one row per leave type, versioned)
	CREATE TABLE IF NOT EXISTS leave_policies (
		leave_type_id TEXT PRIMARY KEY,
		days_allowed TEXT NOT NULL,
		accrual TEXT NOT NULL,
		carry_forward BOOLEAN NOT NULL DEFAULT FALSE,
		max_carry_forward TEXT,
		pro_rated BOOLEAN NOT NULL DEFAULT FALSE,
		applicable_after_days INTEGER NOT NULL DEFAULT 0,
		requires_approval BOOLEAN NOT NULL DEFAULT TRUE,
		requires_documents BOOLEAN NOT NULL DEFAULT FALSE,
		allow_retroactive BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		department TEXT NOT NULL DEFAULT 'all',
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	-- Holidays
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique ON holidays(date, name);

	-- Employees (directory collaborator)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT,
		hire_date TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUEST STORE (leave.RequestStore interface)
// =============================================================================

func (s *Store) Insert(ctx context.Context, r leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attachmentsJSON, err := json.Marshal(r.Attachments)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		INSERT INTO leave_requests
		(id, employee_id, leave_type_id, start_date, end_date, is_half_day,
		 half_day_period, number_of_days, reason, contact_info, status,
		 applied_on, actioned_by, actioned_on, comment, attachments_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID,
		r.EmployeeID,
		r.LeaveTypeID,
		r.StartDate.String(),
		r.EndDate.String(),
		r.IsHalfDay,
		nullString(string(r.HalfDayPeriod)),
		r.NumberOfDays.String(),
		r.Reason,
		r.ContactInfo,
		r.Status,
		r.AppliedOn.UTC().Format(time.RFC3339),
		nullString(r.ActionedBy),
		nullTime(r.ActionedOn),
		nullString(r.Comment),
		string(attachmentsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id leave.RequestID) (leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, id)
}

func (s *Store) get(ctx context.Context, id leave.RequestID) (leave.Request, error) {
	row := s.db.QueryRowContext(ctx, selectRequest+` WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	return r, err
}

// UpdateStatus commits a transition only if the stored status still equals
// 'from'. Zero affected rows on an existing request means a concurrent
// writer won the race.
func (s *Store) UpdateStatus(ctx context.Context, id leave.RequestID, from, to leave.Status, action leave.Action) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, actioned_by = ?, actioned_on = ?, comment = ?
		WHERE id = ? AND status = ?`,
		to,
		action.ActorID,
		action.At.UTC().Format(time.RFC3339),
		action.Comment,
		id,
		from,
	)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return leave.Request{}, err
	}
	if affected == 0 {
		// Distinguish "gone" from "lost the race".
		if _, err := s.get(ctx, id); err != nil {
			return leave.Request{}, err
		}
		return leave.Request{}, leave.ErrConflict
	}

	return s.get(ctx, id)
}

func (s *Store) ByEmployee(ctx context.Context, employeeID string) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectRequest+` WHERE employee_id = ? ORDER BY start_date, id`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) InRange(ctx context.Context, from, to calendar.Date, f leave.Filter) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Inclusive interval intersection: start <= to AND end >= from.
	query := selectRequest + ` WHERE start_date <= ? AND end_date >= ?`
	args := []any{to.String(), from.String()}

	if f.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, f.EmployeeID)
	}
	if f.LeaveTypeID != "" {
		query += ` AND leave_type_id = ?`
		args = append(args, f.LeaveTypeID)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status IN (?` + repeatPlaceholder(len(f.Statuses)-1) + `)`
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ByStatus(ctx context.Context, status leave.Status) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		selectRequest+` WHERE status = ? ORDER BY applied_on, id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

const selectRequest = `
	SELECT id, employee_id, leave_type_id, start_date, end_date, is_half_day,
	       half_day_period, number_of_days, reason, contact_info, status,
	       applied_on, actioned_by, actioned_on, comment, attachments_json
	FROM leave_requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (leave.Request, error) {
	var (
		r               leave.Request
		startDate       string
		endDate         string
		halfDayPeriod   sql.NullString
		numberOfDays    string
		status          string
		appliedOn       string
		actionedBy      sql.NullString
		actionedOn      sql.NullString
		comment         sql.NullString
		attachmentsJSON sql.NullString
	)

	err := row.Scan(&r.ID, &r.EmployeeID, &r.LeaveTypeID, &startDate, &endDate,
		&r.IsHalfDay, &halfDayPeriod, &numberOfDays, &r.Reason, &r.ContactInfo,
		&status, &appliedOn, &actionedBy, &actionedOn, &comment, &attachmentsJSON)
	if err != nil {
		return leave.Request{}, err
	}

	if r.StartDate, err = calendar.ParseDate(startDate); err != nil {
		return leave.Request{}, err
	}
	if r.EndDate, err = calendar.ParseDate(endDate); err != nil {
		return leave.Request{}, err
	}
	if r.NumberOfDays, err = decimal.NewFromString(numberOfDays); err != nil {
		return leave.Request{}, fmt.Errorf("invalid number_of_days: %w", err)
	}
	if r.AppliedOn, err = time.Parse(time.RFC3339, appliedOn); err != nil {
		return leave.Request{}, fmt.Errorf("invalid applied_on: %w", err)
	}

	r.Status = leave.Status(status)
	r.HalfDayPeriod = leave.HalfDayPeriod(halfDayPeriod.String)
	r.ActionedBy = actionedBy.String
	r.Comment = comment.String
	if actionedOn.Valid && actionedOn.String != "" {
		at, err := time.Parse(time.RFC3339, actionedOn.String)
		if err != nil {
			return leave.Request{}, fmt.Errorf("invalid actioned_on: %w", err)
		}
		r.ActionedOn = &at
	}
	if attachmentsJSON.Valid && attachmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(attachmentsJSON.String), &r.Attachments); err != nil {
			return leave.Request{}, fmt.Errorf("invalid attachments: %w", err)
		}
	}
	return r, nil
}

func collectRequests(rows *sql.Rows) ([]leave.Request, error) {
	var result []leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// =============================================================================
// POLICY STORE (policy.Store interface)
// =============================================================================

func (s *Store) Policy(ctx context.Context, id policy.LeaveTypeID) (policy.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectPolicy+` WHERE leave_type_id = ?`, id)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return policy.LeavePolicy{}, policy.ErrNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context) ([]policy.LeavePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectPolicy+` ORDER BY leave_type_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []policy.LeavePolicy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) Put(ctx context.Context, p policy.LeavePolicy) (policy.LeavePolicy, error) {
	if err := p.Validate(); err != nil {
		return policy.LeavePolicy{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxCarry any
	if p.MaxCarryForward != nil {
		maxCarry = p.MaxCarryForward.String()
	}

	// Upsert; version bumps on every update.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_policies
		(leave_type_id, days_allowed, accrual, carry_forward, max_carry_forward,
		 pro_rated, applicable_after_days, requires_approval, requires_documents,
		 allow_retroactive, is_active, department, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(leave_type_id) DO UPDATE SET
			days_allowed = excluded.days_allowed,
			accrual = excluded.accrual,
			carry_forward = excluded.carry_forward,
			max_carry_forward = excluded.max_carry_forward,
			pro_rated = excluded.pro_rated,
			applicable_after_days = excluded.applicable_after_days,
			requires_approval = excluded.requires_approval,
			requires_documents = excluded.requires_documents,
			allow_retroactive = excluded.allow_retroactive,
			is_active = excluded.is_active,
			department = excluded.department,
			version = leave_policies.version + 1,
			updated_at = excluded.updated_at`,
		p.LeaveTypeID,
		p.DaysAllowed.String(),
		p.Accrual,
		p.CarryForward,
		maxCarry,
		p.ProRated,
		p.ApplicableAfterDays,
		p.RequiresApproval,
		p.RequiresDocuments,
		p.AllowRetroactive,
		p.IsActive,
		p.Department,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return policy.LeavePolicy{}, fmt.Errorf("failed to store policy: %w", err)
	}

	row := s.db.QueryRowContext(ctx, selectPolicy+` WHERE leave_type_id = ?`, p.LeaveTypeID)
	return scanPolicy(row)
}

const selectPolicy = `
	SELECT leave_type_id, days_allowed, accrual, carry_forward, max_carry_forward,
	       pro_rated, applicable_after_days, requires_approval, requires_documents,
	       allow_retroactive, is_active, department, version
	FROM leave_policies`

func scanPolicy(row rowScanner) (policy.LeavePolicy, error) {
	var (
		p           policy.LeavePolicy
		daysAllowed string
		maxCarry    sql.NullString
	)
	err := row.Scan(&p.LeaveTypeID, &daysAllowed, &p.Accrual, &p.CarryForward,
		&maxCarry, &p.ProRated, &p.ApplicableAfterDays, &p.RequiresApproval,
		&p.RequiresDocuments, &p.AllowRetroactive, &p.IsActive, &p.Department,
		&p.Version)
	if err != nil {
		return policy.LeavePolicy{}, err
	}

	if p.DaysAllowed, err = decimal.NewFromString(daysAllowed); err != nil {
		return policy.LeavePolicy{}, fmt.Errorf("invalid days_allowed: %w", err)
	}
	if maxCarry.Valid && maxCarry.String != "" {
		d, err := decimal.NewFromString(maxCarry.String)
		if err != nil {
			return policy.LeavePolicy{}, fmt.Errorf("invalid max_carry_forward: %w", err)
		}
		p.MaxCarryForward = &d
	}
	return p, nil
}

// =============================================================================
// HOLIDAY CALENDAR (calendar.HolidayCalendar interface)
// =============================================================================

func (s *Store) HolidaysInRange(ctx context.Context, from, to calendar.Date) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, name FROM holidays WHERE date >= ? AND date <= ? ORDER BY date`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []calendar.Holiday
	for rows.Next() {
		var (
			h       calendar.Holiday
			rawDate string
		)
		if err := rows.Scan(&h.ID, &rawDate, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = calendar.ParseDate(rawDate); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (s *Store) PutHoliday(ctx context.Context, h calendar.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO holidays (id, date, name) VALUES (?, ?, ?)`,
		h.ID, h.Date.String(), h.Name)
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY (leave.Directory interface)
// =============================================================================

func (s *Store) Employee(ctx context.Context, id string) (leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		emp      leave.Employee
		hireDate string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, hire_date, department FROM employees WHERE id = ?`, id).
		Scan(&emp.ID, &hireDate, &emp.Department)
	if err == sql.ErrNoRows {
		return leave.Employee{}, leave.ErrEmployeeNotFound
	}
	if err != nil {
		return leave.Employee{}, err
	}
	if emp.HireDate, err = calendar.ParseDate(hireDate); err != nil {
		return leave.Employee{}, err
	}
	return emp, nil
}

func (s *Store) PutEmployee(ctx context.Context, emp leave.Employee, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, hire_date, department)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hire_date = excluded.hire_date,
			department = excluded.department`,
		emp.ID, name, emp.HireDate.String(), emp.Department)
	return err
}

func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hire_date, department FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leave.Employee
	for rows.Next() {
		var (
			emp      leave.Employee
			hireDate string
		)
		if err := rows.Scan(&emp.ID, &hireDate, &emp.Department); err != nil {
			return nil, err
		}
		if emp.HireDate, err = calendar.ParseDate(hireDate); err != nil {
			return nil, err
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ", ?"
	}
	return out
}
