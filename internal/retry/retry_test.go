package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objstream/bucketfest/internal/errs"
	"github.com/objstream/bucketfest/internal/logger"
)

func fastPolicy() Policy {
	return Policy{
		InitialInterval: time.Millisecond,
		MaxAttempts:     3,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.Nop(), "list", fastPolicy(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversWithinBudget(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.Nop(), "list", fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrKindConnectionFailed, "flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := errs.New(errs.ErrKindConnectionFailed, "down")
	err := Do(context.Background(), logger.Nop(), "list", fastPolicy(), func() error {
		calls++
		return failure
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestDo_PermanentErrorShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		kind errs.ErrKind
	}{
		{"invalid input", errs.ErrKindInvalidInput},
		{"not found", errs.ErrKindNotFound},
		{"permission denied", errs.ErrKindPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), logger.Nop(), "put", fastPolicy(), func() error {
				calls++
				return errs.New(tt.kind, "nope")
			})
			require.Error(t, err)
			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestDo_UnknownErrorsAreRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), logger.Nop(), "list", fastPolicy(), func() error {
		calls++
		return errors.New("bare error")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, logger.Nop(), "list", Policy{InitialInterval: time.Minute, MaxAttempts: 3}, func() error {
		calls++
		cancel()
		return errs.New(errs.ErrKindConnectionFailed, "flaky")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
