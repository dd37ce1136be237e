/*
Package domain contains the core domain models for the Espalier simulator.

It defines the entities of the flow graph and the simulation state machine,
free of I/O and persistence concerns, following Hexagonal Architecture
principles.

# Key Entities

  - Node / Edge / Flow: the read-only graph snapshot a simulation walks.
  - Snapshot: the observable state of a run (status, transcript, debug log,
    captured variables).
  - ChatMessage / DebugMessage: the two ordered logs a run produces.
  - Hooks: lifecycle callbacks for presentation layers.
*/
package domain
