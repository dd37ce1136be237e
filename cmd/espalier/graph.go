package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long:  `Loads the flow file and outputs a Mermaid diagram (graph TD) representing the flow logic.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowPath, _ := cmd.Flags().GetString("flow")
		if !cmd.Flags().Changed("flow") && len(args) > 0 {
			flowPath = args[0]
		}

		flow, err := flowfile.Load(flowPath)
		if err != nil {
			fmt.Printf("Error loading flow: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(flow, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
