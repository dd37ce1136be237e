package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the flow simulation interactively",
	Long:  `Starts an interactive simulation of the flow on the terminal: bot messages are printed as they arrive and input nodes prompt on stdin.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowPath, _ := cmd.Flags().GetString("flow")
		if !cmd.Flags().Changed("flow") && len(args) > 0 {
			flowPath = args[0]
		}
		debug, _ := cmd.Flags().GetBool("debug")
		fast, _ := cmd.Flags().GetBool("fast")
		plain, _ := cmd.Flags().GetBool("plain")
		logLevel, _ := cmd.Flags().GetString("log-level")

		err := cli.RunSession(cli.RunOptions{
			FlowPath: flowPath,
			Debug:    debug,
			Fast:     fast,
			Plain:    plain,
			LogLevel: logLevel,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("debug", false, "Print the debug trace alongside the transcript")
	runCmd.Flags().Bool("fast", false, "Skip message delays")
	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and colors")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
