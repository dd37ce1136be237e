/*
Package espalier is a client-side simulation engine for conversational
flow definitions. It walks a directed graph of typed nodes (messages,
text inputs, triggers) the way a chat frontend would, producing a chat
transcript, a debug trace, and captured variables without touching any
production backend.

# Concept

A flow is a set of nodes and edges. The simulator starts at the flow's
start node and follows edges in definition order, pausing at text-input
nodes until the host submits input and pacing message delivery with
per-node delays. All progress is observable through an immutable
snapshot: run status, transcript, debug log, and collected variables.

The engine is a library first. The same simulator core is exposed
through a terminal CLI, a REST gateway, and an MCP server, following a
hexagonal layout: pkg/domain holds the model, pkg/sim the engine,
pkg/ports the boundary interfaces, and pkg/adapters the integrations.

# Usage

Build a simulator from a flow document and drive it from your host
loop:

	package main

	import (
		"fmt"
		"log"

		"github.com/espalier-dev/espalier"
		"github.com/espalier-dev/espalier/pkg/domain"
		"github.com/espalier-dev/espalier/pkg/sim"
	)

	func main() {
		simulator, err := espalier.Load("flow.yaml",
			sim.WithHooks(domain.Hooks{
				OnChat: func(msg domain.ChatMessage) {
					fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
				},
			}),
		)
		if err != nil {
			log.Fatal(err)
		}

		if err := simulator.Start(); err != nil {
			log.Fatal(err)
		}

		// When the run pauses at a text-input node:
		if err := simulator.SubmitInput("hello"); err != nil {
			log.Fatal(err)
		}

		snap := simulator.Snapshot()
		fmt.Println(snap.Status, snap.Variables)
	}

Runs are replayable: calling Start again resets the transcript and
cancels any pending timers, so a stale continuation can never leak into
the new run.

For serving sessions over HTTP or MCP, see pkg/session and the
adapters under pkg/adapters.
*/
package espalier
