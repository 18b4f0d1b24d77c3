package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omochice/netbattle/internal/ansi"
	"github.com/omochice/netbattle/internal/channel"
	"github.com/omochice/netbattle/internal/config"
	"github.com/omochice/netbattle/internal/dispatcher"
	"github.com/omochice/netbattle/internal/session"
	"github.com/omochice/netbattle/internal/surface"
	"github.com/omochice/netbattle/internal/terminal"
	"github.com/omochice/netbattle/internal/ui"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", "netbattle.toml", "Path to the TOML config file")
	serverAddr := flag.String("server", "", "Server address, host:port for tcp or ws://host:port/ws for ws")
	network := flag.String("network", "", "Transport to use (tcp or ws)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *serverAddr != "" {
		cfg.Server = *serverAddr
	}
	if *network != "" {
		cfg.Network = *network
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, err := channel.Dial(ctx, cfg.Network, cfg.Server)
	if err != nil {
		return err
	}
	defer ch.Close()
	log.Printf("Connected to %s over %s", ch.RemoteAddr(), cfg.Network)

	in := int(os.Stdin.Fd())
	width, height := terminal.Size(int(os.Stdout.Fd()))
	var mode terminal.Mode = terminal.NopMode{}
	if terminal.IsTerminal(in) {
		mode = terminal.NewRawMode(in)
	}

	out := surface.New(os.Stdout, width, height)
	sess := session.New()
	disp := dispatcher.New(ch, sess, out)
	engine := ui.New(terminal.New(os.Stdin, mode, out), out, ch, sess)

	out.Paint(func(w io.Writer) {
		io.WriteString(w, ansi.ClearAll+ansi.HideCursor)
	})
	defer out.Paint(func(w io.Writer) {
		io.WriteString(w, ansi.Reset+ansi.ShowCursor+ansi.MoveTo(1, height)+"\r\n")
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return disp.Run(gctx)
	})
	g.Go(func() error {
		defer ch.Close()
		return engine.Run(gctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Printf("Stopped by signal")
		return nil
	}
	return err
}
