// Package watcher adapts OS file-change notifications into ingestion queue
// entries. It filters creation events by a base-name glob and hands matching
// paths to the pipeline immediately: the delivery goroutine must never do
// slow work, because the kernel's notification buffer is bounded and drops
// events silently under pressure. The pipeline cannot detect or recover
// such drops; this is a documented limitation of the design.
package watcher
