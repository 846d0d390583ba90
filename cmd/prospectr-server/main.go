package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prospectr/prospectr-go/internal/api"
	"github.com/prospectr/prospectr-go/internal/auth"
	"github.com/prospectr/prospectr-go/internal/core"
	"github.com/prospectr/prospectr-go/internal/extractor"
	"github.com/prospectr/prospectr-go/internal/extractor/providers"
	"github.com/prospectr/prospectr-go/internal/extractor/providers/publicweb"
	"github.com/prospectr/prospectr-go/internal/extractor/providers/talentlens"
	"github.com/prospectr/prospectr-go/internal/jobs"
	"github.com/prospectr/prospectr-go/internal/store"
)

// version is overridden at build time with -ldflags.
var version = "dev"

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New(version)
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// --- First User Provisioning ---
	st := store.New(app.DB())
	userCount, err := st.CountUsers()
	if err != nil {
		log.Fatalf("Could not check user count: %v", err)
	}
	if userCount == 0 {
		log.Println("No users found. Creating default admin account.")
		password := generateRandomPassword(12)
		passwordHash, _ := auth.HashPassword(password)
		_, err := st.CreateUser("admin", passwordHash, "admin")
		if err != nil {
			log.Fatalf("Could not create default admin user: %v", err)
		}
		log.Println("==================================================")
		log.Println("Default admin user created.")
		log.Printf("Username: admin")
		log.Printf("Password: %s", password)
		log.Println("Please change this password immediately.")
		log.Println("==================================================")
	}

	// Register all available extraction providers here.
	providers.Register(talentlens.New(app.Config().TalentLens.BaseURL))
	providers.Register(publicweb.New())

	// Start the extraction job runner. It recovers any work interrupted by a
	// previous shutdown before draining the queue.
	runner := extractor.NewRunner(app)
	if err := runner.Start(); err != nil {
		log.Fatalf("Could not start extraction runner: %v", err)
	}

	// Register and schedule the maintenance jobs
	jobs.RegisterMaintenance(app)
	jobs.StartScheduler(app)

	// Setup the API server
	server := api.NewServer(app, runner)
	addr := fmt.Sprintf(":%d", app.Config().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

func generateRandomPassword(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}
