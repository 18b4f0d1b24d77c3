package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omochice/netbattle/internal/peer"
)

func main() {
	// Parse command-line flags
	addr := flag.String("addr", "127.0.0.1:5000", "Address to listen on for both TCP and WebSocket clients")
	limit := flag.Int("limit", 0, "Maximum number of logged-in players (0 for no limit)")
	flag.Parse()

	srv := peer.New(*addr, peer.NewLobby(*limit))
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Printf("  Accepting both TCP socket and WebSocket connections")

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("Received signal %v, shutting down...", sig)
	srv.Stop()

	log.Println("Game server stopped")
}
