/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the MuseMap rewards service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Parse the rewards program (default or -program file)
  4. Seed the reward catalog
  5. Configure HTTP router and start the server

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: musemap.db)
            Use ":memory:" for an in-memory database
  -program  Path to a JSON program definition (default: built-in)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/musemap.db"

  # Run with a custom program definition
  ./server -program="./configs/summer-program.json"

SEE ALSO:
  - api/server.go: Router configuration
  - factory/program.go: Program JSON schema
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RajaShylesh112/musemap-sub000/api"
	"github.com/RajaShylesh112/musemap-sub000/factory"
	"github.com/RajaShylesh112/musemap-sub000/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "musemap.db", "SQLite database path")
	programPath := flag.String("program", "", "JSON program definition (default: built-in)")
	flag.Parse()

	// Load program definition
	programJSON := factory.DefaultProgramJSON()
	if *programPath != "" {
		data, err := os.ReadFile(*programPath)
		if err != nil {
			log.Fatalf("Failed to read program file: %v", err)
		}
		programJSON = string(data)
	}

	program, err := factory.NewProgramFactory().ParseProgram(programJSON)
	if err != nil {
		log.Fatalf("Invalid program definition: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and seed the catalog
	handler := api.NewHandler(store, program)
	if err := handler.SeedCatalog(context.Background()); err != nil {
		log.Fatalf("Failed to seed reward catalog: %v", err)
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Rewards service starting on http://localhost:%d", *port)
		log.Printf("Program: %s", program.Name)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
