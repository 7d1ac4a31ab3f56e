// Package preflight provides readiness checks for the filesystem paths and
// external commands that hopper depends on.
//
// These checks run in two contexts:
//   - The daemon runner calls RunAll before starting the watch so a doomed
//     configuration fails fast with a readable reason.
//   - The CLI "hopper status" command uses individual check functions to
//     display environment health when the daemon is offline.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
