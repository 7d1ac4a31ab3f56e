// Package stability decides whether a file in the watch directory is still
// being written. The shipped prober tries to take an exclusive advisory lock
// on the file: contention means a writer still has it open, a clean
// acquisition means the file is considered settled.
//
// This is a heuristic. A writer that appends without holding an exclusive
// lock will fool the prober; upstream producers are expected to either lock
// while writing or write to a temporary name and rename into the watch
// directory.
package stability
