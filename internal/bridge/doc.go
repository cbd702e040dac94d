// Package bridge implements the fan-out side of vs.logger: a long-lived
// listener on the publish channel's unixgram socket that replicates every
// received envelope to the current set of live subscribers.
//
// Delivery is best-effort and at-most-once per subscriber. There is no
// buffering of missed events: a subscriber only sees events broadcast while
// it is registered, and one that fails a send is dropped and must reconnect.
// Shutdown is cooperative through the context passed to Run.
package bridge
