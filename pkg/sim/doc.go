/*
Package sim implements the flow simulation engine: a single-writer,
event-driven state machine that walks a read-only flow graph, producing
a chat transcript and a debug log while collecting user input into
variables.

A run is started with Start, paused on textInput nodes until SubmitInput
is called, and torn down with Stop. Pacing between bot messages is
driven by a cancellable Scheduler; a per-run generation counter
guarantees that continuations scheduled by a previous run can never leak
into the next one.

All failures (missing start node, dangling edges, node types without
simulation behavior) surface as a terminal error status on the snapshot,
never as panics.
*/
package sim
