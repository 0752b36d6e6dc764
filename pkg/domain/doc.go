/*
Package domain contains the task-transition core of taskflow.

It models a single execution of a declarative process: a set of initial tasks,
a list of task definitions, and the rules that decide when a task may complete
and which tasks become active afterwards. The package performs no I/O and holds
no locks; persistence, locking and transport live in the surrounding packages.

# Key Entities

  - TaskDefinition: immutable description of a task (name, kind, policy).
  - TaskPolicy: strategy deciding follow-on tasks and whether completion is permitted.
  - Process: mutable active/completed task lists plus the transition algorithm.
  - Snapshot: the persistable shape of a process's mutable state.
  - Result: explicit outcome of a completion attempt.
*/
package domain
