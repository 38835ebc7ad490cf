package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunnerLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRunner(zap.New(core), time.Second)

	var ran atomic.Int32
	r.Go("ok", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	r.Go("broken", func(ctx context.Context) error {
		ran.Add(1)
		return errors.New("smtp unreachable")
	})
	r.Go("panics", func(ctx context.Context) error {
		ran.Add(1)
		panic("boom")
	})

	require.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, int32(3), ran.Load())
	assert.Equal(t, 1, logs.FilterMessage("background task failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("background task panicked").Len())
}

func TestRunnerWaitCancelsOnDeadline(t *testing.T) {
	r := NewRunner(zap.NewNop(), time.Minute)
	r.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
	require.NoError(t, r.Wait(context.Background()))
}
