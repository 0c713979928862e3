package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock safe for concurrent reads.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func at(day string, hh, mm, ss int) time.Time {
	d, err := time.Parse(DayLayout, day)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second)
}

func newTestService(start time.Time) (*Service, *MemoryStore, *testClock) {
	clock := newTestClock(start)
	st := NewMemoryStore()
	return NewService(st, WithClock(clock.Now)), st, clock
}

func TestService_DayScenario(t *testing.T) {
	ctx := context.Background()
	svc, st, clock := newTestService(at("2024-06-01", 9, 0, 0))

	// 1. first clock-in opens the day
	rec, err := svc.ClockIn(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "U1", rec.Owner)
	assert.Equal(t, "2024-06-01", rec.Day)
	assert.Equal(t, StatusPresent, rec.Status)
	assert.True(t, rec.LoginTime.Equal(at("2024-06-01", 9, 0, 0)))
	assert.Nil(t, rec.LogoutTime)
	assert.NotEmpty(t, rec.ID)

	// 2. second clock-in is rejected and leaves one record
	clock.Set(at("2024-06-01", 9, 5, 0))
	_, err = svc.ClockIn(ctx, "U1")
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
	recs, err := st.ListRecent(ctx, "U1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].LoginTime.Equal(at("2024-06-01", 9, 0, 0)))

	// 3. clock-out computes hours
	clock.Set(at("2024-06-01", 17, 30, 0))
	out, err := svc.ClockOut(ctx, "U1")
	require.NoError(t, err)
	require.NotNil(t, out.LogoutTime)
	assert.True(t, out.LogoutTime.Equal(at("2024-06-01", 17, 30, 0)))
	assert.Equal(t, 8.5, out.TotalHours)

	// 4. second clock-out is rejected and changes nothing
	clock.Set(at("2024-06-01", 18, 0, 0))
	_, err = svc.ClockOut(ctx, "U1")
	assert.ErrorIs(t, err, ErrNotClockedIn)
	again, err := st.FindDay(ctx, "U1", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, again.LogoutTime.Equal(at("2024-06-01", 17, 30, 0)))
	assert.Equal(t, 8.5, again.TotalHours)

	// 5. status reflects the closed record
	status, err := svc.Status(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, status.Status)
	assert.True(t, status.ClockedIn)
	require.NotNil(t, status.LoginTime)
	require.NotNil(t, status.LogoutTime)
	assert.True(t, status.LoginTime.Equal(at("2024-06-01", 9, 0, 0)))
	assert.True(t, status.LogoutTime.Equal(at("2024-06-01", 17, 30, 0)))
	require.NotNil(t, status.Record)
	assert.Equal(t, rec.ID, status.Record.ID)

	// 6. an owner with no records
	status, err = svc.Status(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, Status{Status: StatusNotMarked, ClockedIn: false}, status)
	history, err := svc.History(ctx, "U2", 0)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestService_StatusWhileOpen(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(at("2024-06-01", 9, 0, 0))
	_, err := svc.ClockIn(ctx, "U1")
	require.NoError(t, err)

	status, err := svc.Status(ctx, "U1")
	require.NoError(t, err)
	assert.True(t, status.ClockedIn)
	assert.NotNil(t, status.LoginTime)
	assert.Nil(t, status.LogoutTime)
}

func TestService_ClockOutWithoutClockIn(t *testing.T) {
	svc, _, _ := newTestService(at("2024-06-01", 17, 0, 0))
	_, err := svc.ClockOut(context.Background(), "U1")
	assert.ErrorIs(t, err, ErrNotClockedIn)
}

func TestService_NewDayStartsFresh(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(at("2024-06-01", 9, 0, 0))
	_, err := svc.ClockIn(ctx, "U1")
	require.NoError(t, err)

	// yesterday's record stays open; today has none
	clock.Set(at("2024-06-02", 8, 0, 0))
	_, err = svc.ClockOut(ctx, "U1")
	assert.ErrorIs(t, err, ErrNotClockedIn)

	status, err := svc.Status(ctx, "U1")
	require.NoError(t, err)
	assert.False(t, status.ClockedIn)

	rec, err := svc.ClockIn(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", rec.Day)
}

func TestService_ClockSkew(t *testing.T) {
	ctx := context.Background()
	svc, st, clock := newTestService(at("2024-06-01", 9, 0, 0))
	_, err := svc.ClockIn(ctx, "U1")
	require.NoError(t, err)

	clock.Set(at("2024-06-01", 8, 59, 0))
	_, err = svc.ClockOut(ctx, "U1")
	assert.ErrorIs(t, err, ErrClockSkew)

	clock.Set(at("2024-06-01", 9, 0, 0))
	_, err = svc.ClockOut(ctx, "U1")
	assert.ErrorIs(t, err, ErrClockSkew)

	rec, err := st.FindDay(ctx, "U1", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, rec.Open())
}

func TestService_ConcurrentClockIn(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(at("2024-06-01", 9, 0, 0))

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ClockIn(ctx, "U1")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyClockedIn)
	}
	assert.Equal(t, 1, created)

	recs, err := st.ListRecent(ctx, "U1", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestService_ConcurrentClockOut(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(at("2024-06-01", 9, 0, 0))
	_, err := svc.ClockIn(ctx, "U1")
	require.NoError(t, err)
	clock.Set(at("2024-06-01", 17, 0, 0))

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ClockOut(ctx, "U1")
		}(i)
	}
	wg.Wait()

	closed := 0
	for _, err := range errs {
		if err == nil {
			closed++
			continue
		}
		assert.ErrorIs(t, err, ErrNotClockedIn)
	}
	assert.Equal(t, 1, closed)
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	start := at("2024-05-01", 9, 0, 0)
	svc, _, clock := newTestService(start)

	for i := 0; i < 35; i++ {
		clock.Set(start.AddDate(0, 0, i))
		_, err := svc.ClockIn(ctx, "U1")
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, DefaultHistoryLimit},
		{"negative", -1, DefaultHistoryLimit},
		{"smaller", 5, 5},
		{"above cap", 100, DefaultHistoryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := svc.History(ctx, "U1", tt.limit)
			require.NoError(t, err)
			require.Len(t, recs, tt.want)
			assert.Equal(t, "2024-06-04", recs[0].Day)
			for i := 1; i < len(recs); i++ {
				assert.Greater(t, recs[i-1].Day, recs[i].Day)
			}
		})
	}
}

func TestService_PresentDays(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(at("2024-05-31", 9, 0, 0))
	for _, day := range []string{"2024-05-31", "2024-06-03", "2024-06-04", "2024-06-30", "2024-07-01"} {
		clock.Set(at(day, 9, 0, 0))
		_, err := svc.ClockIn(ctx, "U1")
		require.NoError(t, err)
	}

	n, err := svc.PresentDays(ctx, "U1", 2024, time.June)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = svc.PresentDays(ctx, "U1", 2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestService_DayUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	clock := newTestClock(time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC))
	svc := NewService(NewMemoryStore(), WithClock(clock.Now), WithLocation(loc))

	rec, err := svc.ClockIn(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-02", rec.Day)
	assert.Equal(t, "2024-06-02", svc.Today())
}

func TestService_TruncatesToMillisecond(t *testing.T) {
	svc, _, _ := newTestService(at("2024-06-01", 9, 0, 0).Add(1234567 * time.Nanosecond))
	rec, err := svc.ClockIn(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, 1000000, rec.LoginTime.Nanosecond())
}

func TestService_MissingOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(at("2024-06-01", 9, 0, 0))

	_, err := svc.ClockIn(ctx, "")
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.ClockOut(ctx, "")
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.Status(ctx, "")
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.History(ctx, "", 0)
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.PresentDays(ctx, "", 2024, time.June)
	assert.ErrorIs(t, err, ErrMissingOwner)
}

var errBoom = errors.New("connection reset")

// brokenStore fails every call with errBoom.
type brokenStore struct{ Store }

func (brokenStore) Insert(context.Context, Record) (Record, error) { return Record{}, errBoom }
func (brokenStore) FindDay(context.Context, string, string) (Record, error) {
	return Record{}, errBoom
}
func (brokenStore) ListRecent(context.Context, string, int) ([]Record, error) { return nil, errBoom }

func TestService_StorageFaultsAreNotPreconditionErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(brokenStore{})

	_, err := svc.ClockIn(ctx, "U1")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrAlreadyClockedIn)

	_, err = svc.ClockOut(ctx, "U1")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrNotClockedIn)

	_, err = svc.Status(ctx, "U1")
	assert.ErrorIs(t, err, errBoom)

	_, err = svc.History(ctx, "U1", 0)
	assert.ErrorIs(t, err, errBoom)
}

func TestTotalHours(t *testing.T) {
	login := at("2024-06-01", 9, 0, 0)
	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"eight and a half hours", 8*time.Hour + 30*time.Minute, 8.5},
		{"one millisecond", time.Millisecond, 0},
		{"twenty minutes", 20 * time.Minute, 0.33},
		{"rounds up", 7*time.Hour + 59*time.Minute + 59*time.Second, 8},
		{"forty five minutes", 45 * time.Minute, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalHours(login, login.Add(tt.elapsed)))
		})
	}
}
