// Package webhook turns an inbound HTTP endpoint into a long-lived,
// cancellable stream of bot-API updates, and coordinates the remote API's
// registration lifecycle with the local server's lifecycle.
//
// # Entry points
//
// Three layers are exposed, each a strict superset of the one below:
//
//   - Listen: registers the webhook, runs the server, deregisters on stop.
//   - ToRouter: registers and schedules deregistration, but leaves running
//     the returned router to the caller. Use this to mount the webhook route
//     on an existing server.
//   - NoSetup: no remote-API calls at all; just the listener, the stop flag,
//     and the router.
//
// # Request flow
//
//  1. POST arrives at the configured path.
//  2. Secret token header checked in constant time (401 on mismatch), then
//     stripped from the request.
//  3. Queue availability checked (503 once the listener has stopped or the
//     sender was closed).
//  4. Body decoded as an update. Success enqueues it in arrival order and
//     returns 200. A malformed body is logged and still answered 200, so
//     the remote API never retries a payload we will never accept.
//
// # Shutdown
//
// Stopping the listener is the single cancellation entry point. It seals
// the producer side, resolves the stop flag (the graceful-shutdown signal),
// and triggers deregistration. Updates already accepted remain consumable
// until the queue is drained; the update channel then closes.
package webhook
