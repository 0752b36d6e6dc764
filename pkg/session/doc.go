/*
Package session runs processes against persistent storage.

The Manager turns the single-owner domain.Process into a safe, session-oriented API:
every operation loads the snapshot, applies one transition and saves the result
while holding a per-session lock (and, optionally, a distributed lock shared by replicas).
*/
package session
