package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	"github.com/espalier-dev/espalier/pkg/adapters/httpapi"
	redisAdapter "github.com/espalier-dev/espalier/pkg/adapters/redis"
	"github.com/espalier-dev/espalier/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulation HTTP server",
	Long:  `Starts the REST gateway: sessions are created over HTTP and each one drives its own simulation run of the flow file.`,
	Run: func(cmd *cobra.Command, args []string) {
		flowPath, _ := cmd.Flags().GetString("flow")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		logLevel, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logging.ParseLevel(logLevel))

		source := flowfile.NewSource(flowPath)
		sessionOpts := []session.Option{session.WithLogger(logger)}

		if redisAddr != "" {
			store := redisAdapter.New(redisAddr, "", 0)
			defer store.Close()
			sessionOpts = append(sessionOpts, session.WithStore(store))
		}

		sessions := session.NewManager(source, sessionOpts...)
		handler := httpapi.NewHandler(sessions,
			httpapi.WithLogger(logger),
			httpapi.WithVersion(espalier.Version),
		)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Espalier Server on %s\n", srv.Addr)
			fmt.Printf("Serving flow from: %s\n", flowPath)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Espalier Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for run persistence (e.g. localhost:6379)")
}
