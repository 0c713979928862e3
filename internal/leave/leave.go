// Package leave stores employee leave applications.
package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Leave types offered to employees.
const (
	TypeSick      = "Sick Leave"
	TypeCasual    = "Casual Leave"
	TypeAnnual    = "Annual Leave"
	TypeMaternity = "Maternity Leave"
	TypePaternity = "Paternity Leave"
)

// Request statuses. Only Pending is set through this package.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const dateLayout = "2006-01-02"

var knownTypes = map[string]bool{
	TypeSick: true, TypeCasual: true, TypeAnnual: true, TypeMaternity: true, TypePaternity: true,
}

var (
	ErrMissingFields = errors.New("leave: all fields are required")
	ErrUnknownType   = errors.New("leave: unknown leave type")
	ErrInvalidDates  = errors.New("leave: invalid date range")
	ErrNotFound      = errors.New("leave: not found")
	ErrNotOwner      = errors.New("leave: not owned by caller")
	ErrMissingOwner  = errors.New("leave: owner identity missing")
)

// Request is one leave application.
type Request struct {
	ID          string    `json:"id" bson:"_id"`
	Owner       string    `json:"owner" bson:"owner"`
	LeaveType   string    `json:"leaveType" bson:"leaveType"`
	StartDate   string    `json:"startDate" bson:"startDate"`
	EndDate     string    `json:"endDate" bson:"endDate"`
	Reason      string    `json:"reason" bson:"reason"`
	Status      string    `json:"status" bson:"status"`
	AppliedDate time.Time `json:"appliedDate" bson:"appliedDate"`
}

// ApplyInput is the caller-supplied part of a Request.
type ApplyInput struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// Store persists leave requests.
type Store interface {
	Insert(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	ListByOwner(ctx context.Context, owner string) ([]Request, error)
	EnsureIndexes(ctx context.Context) error
}

// Service validates and records leave applications.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Apply files a new pending leave request for owner.
func (s *Service) Apply(ctx context.Context, owner string, in ApplyInput) (Request, error) {
	if owner == "" {
		return Request{}, ErrMissingOwner
	}
	in.LeaveType = strings.TrimSpace(in.LeaveType)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.Reason = strings.TrimSpace(in.Reason)
	if in.LeaveType == "" || in.StartDate == "" || in.EndDate == "" || in.Reason == "" {
		return Request{}, ErrMissingFields
	}
	if !knownTypes[in.LeaveType] {
		return Request{}, ErrUnknownType
	}
	start, err := time.Parse(dateLayout, in.StartDate)
	if err != nil {
		return Request{}, ErrInvalidDates
	}
	end, err := time.Parse(dateLayout, in.EndDate)
	if err != nil || end.Before(start) {
		return Request{}, ErrInvalidDates
	}

	req := Request{
		ID:          uuid.NewString(),
		Owner:       owner,
		LeaveType:   in.LeaveType,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Reason:      in.Reason,
		Status:      StatusPending,
		AppliedDate: s.now().UTC().Truncate(time.Millisecond),
	}
	created, err := s.store.Insert(ctx, req)
	if err != nil {
		return Request{}, fmt.Errorf("leave: apply: %w", err)
	}
	return created, nil
}

// List returns owner's requests, most recently applied first.
func (s *Service) List(ctx context.Context, owner string) ([]Request, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}
	reqs, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("leave: list: %w", err)
	}
	if reqs == nil {
		reqs = []Request{}
	}
	return reqs, nil
}

// Get returns a single request if owner filed it.
func (s *Service) Get(ctx context.Context, owner, id string) (Request, error) {
	if owner == "" {
		return Request{}, ErrMissingOwner
	}
	req, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("leave: get: %w", err)
	}
	if req.Owner != owner {
		return Request{}, ErrNotOwner
	}
	return req, nil
}
