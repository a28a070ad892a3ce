// Package connection owns the lifecycle of the remote cache connection:
// connect, detect disconnects, retry with bounded backoff, and expose a
// readiness signal. Connection failures only ever affect readiness; they
// are never fatal to the hosting process.
package connection

// State describes the connection lifecycle.
type State string

const (
	// StateDisconnected means no connection exists and a retry may be pending.
	StateDisconnected State = "disconnected"

	// StateConnecting means a connect attempt is in flight.
	StateConnecting State = "connecting"

	// StateConnected means the remote backend is usable.
	StateConnected State = "connected"

	// StatePermanentlyDegraded is terminal: the retry budget is exhausted
	// and no further attempts will be scheduled.
	StatePermanentlyDegraded State = "permanently_degraded"
)

// stateValue maps states onto the connection state gauge.
var stateValue = map[State]float64{
	StateDisconnected:        0,
	StateConnecting:          1,
	StateConnected:           2,
	StatePermanentlyDegraded: -1,
}
