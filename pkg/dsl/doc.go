/*
Package dsl provides a fluent Go builder for taskflow process definitions.

It lets developers declare tasks, their follow-ons and their constraints in code
instead of a YAML file. This is particularly useful for tests and for processes
whose constraints need arbitrary Go logic.

Example usage:

	package main

	import (
		"github.com/aretw0/taskflow/pkg/dsl"
	)

	func main() {
		b := dsl.New("expense-approval").Initial("submit")

		b.Task("submit").User().Then("review", "audit")
		b.Task("audit").Service()
		b.Task("review").User().
			Requires("submit").
			WaitFor("audit").
			When([]string{"audit"}, "payout")

		blueprint, err := b.Build()
		if err != nil {
			panic(err)
		}

		process := blueprint.NewProcess()
		process.Start()
	}
*/
package dsl
