package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	for _, spec := range []string{"0 */6 * * *", "30 0 */6 * * *", "@hourly", "@every 6h"} {
		assert.NoError(t, Validate(spec), spec)
	}
	assert.Error(t, Validate("every day"))
}

func TestScheduleSyncRuns(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "base")

	r := New(zerolog.Nop(), ctx)
	var calls int32
	_, err := r.ScheduleSync("* * * * * *", func(ctx context.Context) error {
		if ctx.Value(key{}) != "base" {
			t.Errorf("expected base context")
		}
		atomic.AddInt32(&calls, 1)
		return errors.New("ignored")
	})
	require.NoError(t, err)

	r.Start()
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) > 0
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduleSyncRejectsBadSpec(t *testing.T) {
	r := New(zerolog.Nop(), nil)
	_, err := r.ScheduleSync("nope", func(context.Context) error { return nil })
	assert.Error(t, err)
}
