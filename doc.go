/*
Package taskflow is a small task-transition engine for long-running, human-in-the-loop processes.

A process is a set of active tasks. Completing an active task removes it, records it as
completed and activates the follow-on tasks its policy selects, provided the task's
constraint allows completion at that moment. Nothing else happens: there is no graph
validation and no scheduler in the core, which keeps every transition deterministic
and trivially testable.

# Layout

  - pkg/domain: the Process, task definitions, policies and typed errors.
  - pkg/policy: declarative rules (requires, wait_for, next, branches) usable from YAML.
  - pkg/dsl: a fluent builder for definitions in Go code.
  - pkg/session: persistent, lock-protected execution of one process per session ID.
  - pkg/adapters: stores (memory, file, redis), loaders, HTTP and MCP drivers.

# Usage

Describe the process in Go (or in a process.yaml file) and drive sessions through the Engine.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/taskflow"
		"github.com/aretw0/taskflow/pkg/dsl"
	)

	func main() {
		b := dsl.New("approval").Initial("submit")
		b.Task("submit").Then("review", "audit")
		b.Task("review").Service().Requires("submit")

		eng, err := taskflow.New("", taskflow.WithBlueprint(b.MustBuild()))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if _, err := eng.Start(ctx, "order-42"); err != nil {
			log.Fatal(err)
		}

		res, snap, err := eng.Complete(ctx, "order-42", "submit")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Outcome, snap.Active) // completed [review audit]
	}

Task-level failures (a task that is not active, or whose constraint refuses completion)
are reported in the Result and never change the stored session; the returned error is
reserved for storage and locking problems.
*/
package taskflow
