// Package job implements the background automation core: the recurrence
// processor that spawns successor instances of completed recurring tasks,
// the reminder dispatcher that delivers due reminders, and the runner that
// schedules both on fixed intervals with a per-job single-flight guard.
//
// Correctness rests on two layers. The runner guarantees that two runs of
// the same job type never overlap in-process (a tick that fires while the
// previous run is still going is skipped). Independently, every per-row
// unit of work re-checks its selection predicate under a row lock before
// mutating, so even overlapping scans — from an external trigger racing a
// timer tick, or a user edit racing the job — produce at most one successor
// per completion and at most one delivery per reminder.
package job
