package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service runs the daily clock-in/clock-out state machine on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
	loc   *time.Location
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the location used to derive the calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates a service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current day key.
func (s *Service) Today() string {
	return s.day(s.clock())
}

// ClockIn opens today's record for owner.
func (s *Service) ClockIn(ctx context.Context, owner string) (Record, error) {
	if owner == "" {
		return Record{}, ErrMissingOwner
	}
	now := s.clock()
	rec := Record{
		ID:        uuid.NewString(),
		Owner:     owner,
		Day:       s.day(now),
		LoginTime: now,
		Status:    StatusPresent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.store.Insert(ctx, rec)
	if errors.Is(err, ErrDuplicate) {
		return Record{}, ErrAlreadyClockedIn
	}
	if err != nil {
		return Record{}, fmt.Errorf("attendance: clock in: %w", err)
	}
	return created, nil
}

// ClockOut closes today's open record for owner and computes its total hours.
func (s *Service) ClockOut(ctx context.Context, owner string) (Record, error) {
	if owner == "" {
		return Record{}, ErrMissingOwner
	}
	now := s.clock()
	rec, err := s.store.FindDay(ctx, owner, s.day(now))
	if errors.Is(err, ErrNotFound) {
		return Record{}, ErrNotClockedIn
	}
	if err != nil {
		return Record{}, fmt.Errorf("attendance: clock out: %w", err)
	}
	if !rec.Open() {
		return Record{}, ErrNotClockedIn
	}
	if !now.After(rec.LoginTime) {
		return Record{}, ErrClockSkew
	}

	closed, err := s.store.Close(ctx, rec.ID, now, TotalHours(rec.LoginTime, now))
	if errors.Is(err, ErrNotFound) {
		// another request closed it first
		return Record{}, ErrNotClockedIn
	}
	if err != nil {
		return Record{}, fmt.Errorf("attendance: clock out: %w", err)
	}
	return closed, nil
}

// Status reports today's state for owner without mutating anything.
func (s *Service) Status(ctx context.Context, owner string) (Status, error) {
	if owner == "" {
		return Status{}, ErrMissingOwner
	}
	rec, err := s.store.FindDay(ctx, owner, s.Today())
	if errors.Is(err, ErrNotFound) {
		return Status{Status: StatusNotMarked, ClockedIn: false}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("attendance: status: %w", err)
	}
	login := rec.LoginTime
	return Status{
		Status:     rec.Status,
		ClockedIn:  true,
		LoginTime:  &login,
		LogoutTime: rec.LogoutTime,
		Record:     &rec,
	}, nil
}

// History returns owner's most recent records, newest day first. A limit
// outside 1..DefaultHistoryLimit falls back to DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, owner string, limit int) ([]Record, error) {
	if owner == "" {
		return nil, ErrMissingOwner
	}
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	recs, err := s.store.ListRecent(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("attendance: history: %w", err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// PresentDays counts the days in the given month on which owner clocked in.
func (s *Service) PresentDays(ctx context.Context, owner string, year int, month time.Month) (int, error) {
	if owner == "" {
		return 0, ErrMissingOwner
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	n, err := s.store.CountBetween(ctx, owner, first.Format(DayLayout), last.Format(DayLayout))
	if err != nil {
		return 0, fmt.Errorf("attendance: present days: %w", err)
	}
	return n, nil
}

// clock returns now at the millisecond precision every store can round-trip.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) day(t time.Time) string {
	return t.In(s.loc).Format(DayLayout)
}
