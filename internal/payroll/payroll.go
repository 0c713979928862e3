// Package payroll generates and serves monthly salary slips.
package payroll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Slip statuses.
const (
	StatusPending   = "Pending"
	StatusProcessed = "Processed"
	StatusPaid      = "Paid"
)

// WorkingDays is the fixed number of working days per month.
const WorkingDays = 30

var (
	AllowanceRate = decimal.RequireFromString("0.10")
	DeductionRate = decimal.RequireFromString("0.05")
)

var (
	ErrInvalidInput     = errors.New("payroll: month, year and basic salary are required")
	ErrAlreadyGenerated = errors.New("payroll: already generated for this month")
	ErrDuplicate        = errors.New("payroll: slip exists for owner and month")
	ErrNotFound         = errors.New("payroll: not found")
	ErrNotOwner         = errors.New("payroll: not owned by caller")
	ErrMissingOwner     = errors.New("payroll: owner identity missing")
)

// Slip is one owner's payroll for one month.
type Slip struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner"`
	Month         string          `json:"month"`
	Year          int             `json:"year"`
	BasicSalary   decimal.Decimal `json:"basicSalary"`
	Allowances    decimal.Decimal `json:"allowances"`
	Deductions    decimal.Decimal `json:"deductions"`
	NetSalary     decimal.Decimal `json:"netSalary"`
	WorkingDays   int             `json:"workingDays"`
	PresentDays   int             `json:"presentDays"`
	Status        string          `json:"status"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	GeneratedDate time.Time       `json:"generatedDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// GenerateInput is the request to generate a slip. Month and year accept
// either JSON strings or numbers, as browser forms send both.
type GenerateInput struct {
	Month       Numeric         `json:"month"`
	Year        Numeric         `json:"year"`
	BasicSalary decimal.Decimal `json:"basicSalary"`
}

// Numeric is a JSON value that may arrive as a string or a number.
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*n = Numeric(strings.TrimSpace(s))
	return nil
}

// AttendanceCounter reports how many days an owner attended in a month.
type AttendanceCounter interface {
	PresentDays(ctx context.Context, owner string, year int, month time.Month) (int, error)
}

// Store persists slips. Insert must reject a second slip for the same
// (owner, month, year) with ErrDuplicate.
type Store interface {
	Insert(ctx context.Context, slip Slip) (Slip, error)
	Get(ctx context.Context, id string) (Slip, error)
	ListByOwner(ctx context.Context, owner string) ([]Slip, error)
	EnsureIndexes(ctx context.Context) error
}

// Service generates slips using a fixed allowance/deduction split.
type Service struct {
	store      Store
	attendance AttendanceCounter
	now        func() time.Time
}

// NewService creates a service. attendance may be nil, in which case
// present days are recorded as zero.
func NewService(store Store, attendance AttendanceCounter) *Service {
	return &Service{store: store, attendance: attendance, now: time.Now}
}

// Compute fills the derived money fields for basic.
func Compute(basic decimal.Decimal) (allowances, deductions, net decimal.Decimal) {
	basic = basic.Round(2)
	allowances = basic.Mul(AllowanceRate).Round(2)
	deductions = basic.Mul(DeductionRate).Round(2)
	net = basic.Add(allowances).Sub(deductions)
	return allowances, deductions, net
}

// Generate creates the slip for the requested month.
func (s *Service) Generate(ctx context.Context, owner string, in GenerateInput) (Slip, error) {
	if owner == "" {
		return Slip{}, ErrMissingOwner
	}
	month, err := strconv.Atoi(string(in.Month))
	if err != nil || month < 1 || month > 12 {
		return Slip{}, ErrInvalidInput
	}
	year, err := strconv.Atoi(string(in.Year))
	if err != nil || year < 1900 || year > 9999 {
		return Slip{}, ErrInvalidInput
	}
	if !in.BasicSalary.IsPositive() {
		return Slip{}, ErrInvalidInput
	}

	present := 0
	if s.attendance != nil {
		present, err = s.attendance.PresentDays(ctx, owner, year, time.Month(month))
		if err != nil {
			return Slip{}, fmt.Errorf("payroll: count attendance: %w", err)
		}
	}

	allowances, deductions, net := Compute(in.BasicSalary)
	now := s.now().UTC().Truncate(time.Millisecond)
	slip := Slip{
		ID:            uuid.NewString(),
		Owner:         owner,
		Month:         fmt.Sprintf("%02d", month),
		Year:          year,
		BasicSalary:   in.BasicSalary.Round(2),
		Allowances:    allowances,
		Deductions:    deductions,
		NetSalary:     net,
		WorkingDays:   WorkingDays,
		PresentDays:   present,
		Status:        StatusPending,
		GeneratedDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := s.store.Insert(ctx, slip)
	if errors.Is(err, ErrDuplicate) {
		return Slip{}, ErrAlreadyGenerated
	}
	if err != nil {
		return Slip{}, fmt.Errorf("payroll: generate: %w", err)
	}
	return created, nil
}

// List returns owner's slips, latest period first.
func (s *Service) List(ctx context.Context, owner string) ([]Slip, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}
	slips, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("payroll: list: %w", err)
	}
	if slips == nil {
		slips = []Slip{}
	}
	return slips, nil
}

// Get returns one slip if owner holds it.
func (s *Service) Get(ctx context.Context, owner, id string) (Slip, error) {
	if owner == "" {
		return Slip{}, ErrMissingOwner
	}
	slip, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Slip{}, ErrNotFound
	}
	if err != nil {
		return Slip{}, fmt.Errorf("payroll: get: %w", err)
	}
	if slip.Owner != owner {
		return Slip{}, ErrNotOwner
	}
	return slip, nil
}

func periodAfter(a, b Slip) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	if a.Month != b.Month {
		return a.Month > b.Month
	}
	return a.ID < b.ID
}
