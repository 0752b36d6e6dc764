/*
Package observability turns engine lifecycle events into metrics and structured logs.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks, so they can be combined
with LifecycleHooks.Merge and passed to taskflow.WithLifecycleHooks.
*/
package observability
