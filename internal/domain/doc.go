// Package domain defines the core business entities of the task tracker:
// users, tasks, tags and reminders. Entities are created through constructors
// that enforce their invariants, so an invalid entity (for example a recurring
// task with a zero interval) is unrepresentable outside this package.
package domain
