package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingMarker struct {
	calls atomic.Int32
	err   error
}

func (m *countingMarker) MarkNoShows(context.Context, time.Time) (int, error) {
	m.calls.Add(1)
	return 1, m.err
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRun_SweepsUntilCancelled(t *testing.T) {
	m := &countingMarker{err: errors.New("db locked")}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Run(ctx, m, 5*time.Millisecond, quiet())
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.calls.Load() >= 2 }, time.Second, 5*time.Millisecond,
		"errors must not stop the loop")
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_Disabled(t *testing.T) {
	m := &countingMarker{}
	Run(context.Background(), m, 0, quiet())
	assert.Zero(t, m.calls.Load())
}
