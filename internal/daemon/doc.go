// Package daemon coordinates the long-running hopper process.
//
// It wires configuration, the ledger store, the ingestion worker, and the
// filesystem watcher into a single lifecycle with flock-based locking to
// prevent multiple instances. The daemon exposes ledger maintenance helpers,
// manual file ingestion, and the status snapshot served over IPC.
//
// Keep orchestration logic here: pipeline steps live in their own packages
// while the daemon focuses on startup, shutdown, and high level coordination.
package daemon
