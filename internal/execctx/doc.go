// Package execctx provides the execution.Context adapters that bind one
// program execution to its environment:
//
//   - Interactive drives an execution over a live message connection. Read
//     blocks the execution goroutine until the transport delivers a message.
//   - Batch drives an execution against a fixed list of inputs and records
//     everything emitted. It never blocks; reading past the inputs fails.
//   - Console drives an execution over a reader/writer pair for local runs.
//
// Every adapter starts with a fresh execution.Memory that lives exactly as
// long as the adapter.
package execctx
