package connection

import "time"

// backoffDelay returns the wait before the next connect attempt.
// Attempt n waits n*base, capped at max. Deployments run this with
// 100ms/3s as well as 500ms/5s; both are plain configurations.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(attempt) * base
	if d > max {
		d = max
	}
	return d
}
