package backoff

import "time"

// NextDelay returns the wait before the given attempt: zero for attempt 0,
// otherwise base*2^(attempt-1) capped at maxDelay.
func NextDelay(attempt int, base, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		if maxDelay > 0 && d >= maxDelay {
			return maxDelay
		}
		if d > time.Duration(1<<62)/2 {
			break
		}
		d *= 2
	}
	if maxDelay > 0 && d > maxDelay {
		return maxDelay
	}
	return d
}
