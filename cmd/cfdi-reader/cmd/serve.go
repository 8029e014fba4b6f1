package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/cfdi-reader/internal/processor"
	"github.com/rezonia/cfdi-reader/internal/server"
	"github.com/rezonia/cfdi-reader/internal/store"
)

var (
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for reading invoices.

The API provides endpoints for:
  - POST /api/v1/invoices      - Read an invoice (multipart "file" or raw body with ?name=)
  - GET  /api/v1/invoices      - List stored extractions (requires --db)
  - GET  /api/v1/invoices/:id  - Show a stored extraction (requires --db)
  - POST /api/v1/info          - Describe an XML document
  - GET  /health               - Health check

Examples:
  # Start server on default port
  cfdi-reader serve

  # Keep extraction history
  cfdi-reader serve --address :9000 --db history.db

  # Start in debug mode
  cfdi-reader serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", ":8080", "Server listen address (env: CFDI_READER_SERVER_ADDRESS)")
	serveCmd.Flags().String("db", "", "Extraction history database (env: CFDI_READER_SERVER_DB)")
	serveCmd.Flags().Bool("debug", false, "Enable debug mode")
	serveCmd.Flags().Int64("max-upload-mb", 10, "Maximum upload size in MB")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 30*time.Second, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:        cfg.Server.Address,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		Debug:          cfg.Server.Debug,
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithPipeline(processor.NewPipeline(processor.WithLogger(logger))),
	}

	var history *store.BoltStore
	if cfg.Server.DBPath != "" {
		st, err := store.Open(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		history = st
		opts = append(opts, server.WithStore(st))
	}

	srv := server.NewServer(config, opts...)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		if history != nil {
			history.Close()
		}
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", config.Address)
	if history != nil {
		fmt.Printf("Extraction history enabled (%s)\n", cfg.Server.DBPath)
	} else {
		fmt.Println("Extraction history disabled (no --db)")
	}

	return srv.Run()
}
