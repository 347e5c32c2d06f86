package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/hospital-records/jobs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpiredSessions() error {
	p.calls.Add(1)
	return p.err
}

func TestScheduler(t *testing.T) {
	t.Run("runs on schedule", func(t *testing.T) {
		p := &countingPurger{}
		s := jobs.NewScheduler(p, "@every 1s", zerolog.Nop())
		require.NoError(t, s.Start())

		require.Eventually(t, func() bool { return p.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
	})

	t.Run("rejects a bad schedule", func(t *testing.T) {
		s := jobs.NewScheduler(&countingPurger{}, "every tuesday", zerolog.Nop())
		require.Error(t, s.Start())
	})

	t.Run("purge errors are logged not raised", func(t *testing.T) {
		p := &countingPurger{err: errors.New("store offline")}
		s := jobs.NewScheduler(p, "", zerolog.Nop())
		s.PurgeSessions()
		require.Equal(t, int32(1), p.calls.Load())
	})
}
