// Package handler ships the built-in processing callbacks invoked for each
// stabilized file. Handlers never delete the source file; the worker does
// that after a handler reports success.
package handler
