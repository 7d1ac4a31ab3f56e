// Package ingest contains the core pipeline: a mutex-guarded FIFO of pending
// file paths and the single processing worker that drains it.
//
// The watch side enqueues paths and returns immediately; the worker parks
// when the queue is empty and wakes on enqueue or stop. Each dequeued file
// is probed for stability with a bounded retry budget, handed to the
// processing handler once settled, and deleted from the watch directory on
// success. Files that never settle, or whose processing fails, are left in
// place and reported.
//
// Exactly one worker goroutine exists at a time. Items are fully resolved in
// FIFO order; a slow handler delays everything behind it. That serialization
// is deliberate.
package ingest
