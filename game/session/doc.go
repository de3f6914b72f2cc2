// Package session manages the lifecycle of solve jobs: creation with
// generated IDs, status transitions, lookup, cleanup of stale finished
// jobs, and an optional file archive of finished results.
//
// The manager implements service.JobManager. Archiving is best-effort;
// a failed write never fails the job itself.
package session
