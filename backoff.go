package kafka

import "time"

// exhaustionPolicy names what a retry loop does when all attempts failed.
// The group offset commit/fetch loops swallow exhaustion while coordinator
// discovery surfaces it; keeping the policy an explicit value makes that
// asymmetry a deliberate property instead of an accident of call-site
// structure.
type exhaustionPolicy int

const (
	// swallowExhaustion gives up silently: run returns nil and callers
	// observe exhaustion only through side effects (or their absence).
	swallowExhaustion exhaustionPolicy = iota

	// surfaceExhaustion returns the last attempt's error to the caller.
	surfaceExhaustion
)

// retryPolicy is a bounded retry loop: a fixed number of attempts, a backoff
// schedule, and a named exhaustion policy.
type retryPolicy struct {
	// Number of attempts, not retries: 3 means the operation runs at most
	// three times.
	attempts int

	// delay returns the sleep applied after the failed attempt with the
	// given zero-based index.
	delay func(attempt int) time.Duration

	// delayAfterLast applies the backoff even after the final failed
	// attempt, before the loop terminates.
	delayAfterLast bool

	exhaustion exhaustionPolicy
}

// offsetCommitPolicy is the schedule shared by the group offset commit and
// fetch loops: quadratic backoff, silent exhaustion. After the failed
// attempt i the loop sleeps (i+1)^2 seconds, so three attempts sleep 1s and
// 4s between them.
func offsetCommitPolicy(retries int) retryPolicy {
	return retryPolicy{
		attempts: retries,
		delay: func(attempt int) time.Duration {
			n := attempt + 1
			return time.Duration(n*n) * time.Second
		},
		exhaustion: swallowExhaustion,
	}
}

// coordinatorLookupPolicy is the schedule of coordinator discovery: the
// backoff starts at 2s and squares after every failure (2s, 4s, 16s), three
// attempts total, and the final failure is surfaced to the caller.
func coordinatorLookupPolicy() retryPolicy {
	return retryPolicy{
		attempts: 3,
		delay: func(attempt int) time.Duration {
			d := 2
			for i := 0; i < attempt; i++ {
				d *= d
			}
			return time.Duration(d) * time.Second
		},
		delayAfterLast: true,
		exhaustion:     surfaceExhaustion,
	}
}

// run drives the retry loop. sleep may be nil, in which case time.Sleep is
// used; tests inject a recording function instead. attempt receives the
// zero-based attempt index and reports failure by returning a non-nil error.
func (p retryPolicy) run(sleep func(time.Duration), attempt func(int) error) error {
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for i := 0; i < p.attempts; i++ {
		err := attempt(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if i+1 < p.attempts || p.delayAfterLast {
			sleep(p.delay(i))
		}
	}

	if p.exhaustion == surfaceExhaustion {
		return lastErr
	}
	return nil
}
