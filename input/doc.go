// Package input delivers canonical key events from a backend read primitive.
//
// Two delivery shapes are offered over the same sources:
//   - Spawn runs a worker goroutine that feeds a channel (bounded with
//     backpressure, or unbounded with an ordered queue)
//   - Stream exposes a pull-based Next/All API, either polling the backend on
//     the caller's goroutine (NewPollStream) or bridging a Spawn worker
//     (NewBridgedStream)
//
// Sources are generic over the backend's native event type; the conversion to
// keys.Event is passed in, so each backend plugs in without an interface value
// per event.
package input
