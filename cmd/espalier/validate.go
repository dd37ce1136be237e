package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the flow definition for consistency",
	Long:  `Loads the flow file and reports structural problems: duplicate node IDs, missing or ambiguous start nodes, dangling edges, and unreachable nodes.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowPath, _ := cmd.Flags().GetString("flow")
		if !cmd.Flags().Changed("flow") && len(args) > 0 {
			flowPath = args[0]
		}

		if err := runValidate(flowPath); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Flow is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	flow, err := flowfile.Load(path)
	if err != nil {
		return err
	}
	return espalier.Validate(flow)
}
