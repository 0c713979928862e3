package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ApplyInput {
	return ApplyInput{
		LeaveType: TypeSick,
		StartDate: "2024-06-10",
		EndDate:   "2024-06-12",
		Reason:    "flu",
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *ApplyInput)
		wantErr error
	}{
		{"valid", func(in *ApplyInput) {}, nil},
		{"single day", func(in *ApplyInput) { in.EndDate = in.StartDate }, nil},
		{"missing type", func(in *ApplyInput) { in.LeaveType = "" }, ErrMissingFields},
		{"blank reason", func(in *ApplyInput) { in.Reason = "   " }, ErrMissingFields},
		{"missing end", func(in *ApplyInput) { in.EndDate = "" }, ErrMissingFields},
		{"unknown type", func(in *ApplyInput) { in.LeaveType = "Vacation" }, ErrUnknownType},
		{"bad start", func(in *ApplyInput) { in.StartDate = "10/06/2024" }, ErrInvalidDates},
		{"end before start", func(in *ApplyInput) { in.EndDate = "2024-06-01" }, ErrInvalidDates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewMemoryStore())
			in := validInput()
			tt.mutate(&in)

			req, err := svc.Apply(context.Background(), "U1", in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "U1", req.Owner)
			assert.Equal(t, StatusPending, req.Status)
			assert.NotEmpty(t, req.ID)
			assert.False(t, req.AppliedDate.IsZero())
		})
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, reason := range []string{"first", "second", "third"} {
		applied := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return applied }
		in := validInput()
		in.Reason = reason
		_, err := svc.Apply(ctx, "U1", in)
		require.NoError(t, err)
	}

	reqs, err := svc.List(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, "third", reqs[0].Reason)
	assert.Equal(t, "first", reqs[2].Reason)

	empty, err := svc.List(ctx, "U2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())
	req, err := svc.Apply(ctx, "U1", validInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, "U1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, req, got)

	_, err = svc.Get(ctx, "U2", req.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Get(ctx, "U1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())
	_, err := svc.Apply(ctx, "", validInput())
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.List(ctx, "")
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.Get(ctx, "", "x")
	assert.ErrorIs(t, err, ErrMissingOwner)
}
