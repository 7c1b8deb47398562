package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOffsetCommitPolicySchedule(t *testing.T) {
	rec := &sleepRecorder{}
	attempts := 0

	err := offsetCommitPolicy(3).run(rec.sleep, func(i int) error {
		require.Equal(t, attempts, i)
		attempts++
		return errors.New("nope")
	})

	require.NoError(t, err, "exhaustion must be swallowed")
	require.Equal(t, 3, attempts)
	require.Equal(t, []time.Duration{1 * time.Second, 4 * time.Second}, rec.slept,
		"no sleep after the final attempt")
}

func TestOffsetCommitPolicyStopsOnSuccess(t *testing.T) {
	rec := &sleepRecorder{}
	attempts := 0

	err := offsetCommitPolicy(3).run(rec.sleep, func(i int) error {
		attempts++
		if i == 1 {
			return nil
		}
		return errors.New("nope")
	})

	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, []time.Duration{1 * time.Second}, rec.slept)
}

func TestCoordinatorLookupPolicySchedule(t *testing.T) {
	rec := &sleepRecorder{}
	lastErr := errors.New("coordinator not available")
	attempts := 0

	err := coordinatorLookupPolicy().run(rec.sleep, func(i int) error {
		attempts++
		return lastErr
	})

	require.Equal(t, lastErr, err, "exhaustion must surface the last error")
	require.Equal(t, 3, attempts)
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 16 * time.Second}, rec.slept,
		"the backoff applies after every failure, the last one included")
}

func TestCoordinatorLookupPolicyStopsOnSuccess(t *testing.T) {
	rec := &sleepRecorder{}

	err := coordinatorLookupPolicy().run(rec.sleep, func(i int) error {
		if i == 0 {
			return errors.New("nope")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []time.Duration{2 * time.Second}, rec.slept)
}

func TestRetryPolicyZeroAttempts(t *testing.T) {
	called := false

	err := offsetCommitPolicy(0).run(nil, func(int) error {
		called = true
		return errors.New("nope")
	})

	require.NoError(t, err)
	require.False(t, called)
}
