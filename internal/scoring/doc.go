// Package scoring computes workforce wellness signals from already-fetched
// rows: a clamped stress score per worker, leave/deadline conflicts, and a
// ranked list of assignees for a new work item.
//
// Nothing here performs I/O or holds state between calls; callers fetch
// work items, workers and leave windows and pass them in.
package scoring
