/*
Package ports defines the driven and driving ports (interfaces) of taskflow.

These interfaces decouple the transition core from external implementations, allowing
the engine to work with various storage backends, definition sources and lock providers.

# Key Interfaces

  - DefinitionLoader: Responsible for loading the process Blueprint (e.g., from YAML or the Go DSL).
  - StateStore: Responsible for persisting and loading process Snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - ProcessEngine: The session-oriented API consumed by HTTP, MCP and CLI adapters.
*/
package ports
