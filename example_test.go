package espalier_test

import (
	"fmt"
	"log"
	"time"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/sim"
)

// Example drives a two-node flow to completion, printing the
// transcript as it is produced.
func Example() {
	flow := domain.Flow{
		Name: "hello",
		Nodes: []domain.Node{
			{ID: "start-1", Type: domain.NodeTypeStart},
			{ID: "msg-1", Type: domain.NodeTypeMessage, Data: map[string]any{
				"message": "Welcome aboard!",
			}},
		},
		Edges: []domain.Edge{
			{Source: "start-1", Target: "msg-1"},
		},
	}

	done := make(chan struct{})
	simulator, err := espalier.New(flow,
		sim.WithDelayScale(0),
		sim.WithHooks(domain.Hooks{
			OnChat: func(msg domain.ChatMessage) {
				fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
			},
			OnStatus: func(status domain.RunStatus) {
				if status.Terminal() {
					close(done)
				}
			},
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := simulator.Start(); err != nil {
		log.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		log.Fatal("simulation did not finish")
	}
}
