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

	"dexrun/cmd"
	"dexrun/internal/api"
	"dexrun/internal/db"
	"dexrun/internal/server"
	"dexrun/internal/sorter"
	"dexrun/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(version, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if config.ShowVersion {
		fmt.Println("dexrun", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.ServeAddr != "" {
		err = serve(ctx, config)
	} else {
		err = dashboard(ctx, config)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, config *cmd.Config) error {
	database, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	logger := log.New(os.Stderr, "dexrun ", log.LstdFlags)
	srv := server.New(db.Store{DB: database}, server.Options{
		SpriteDir: config.SpriteDir,
		Logger:    logger,
	})
	return srv.ListenAndServe(ctx, config.ServeAddr)
}

func dashboard(ctx context.Context, config *cmd.Config) error {
	client, err := api.NewClient(config.ServerURL)
	if err != nil {
		return err
	}

	s, err := sorter.New(config.Locale)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if config.LogPath != "" {
		f, err := tea.LogToFile(config.LogPath, "dexrun")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger = log.Default()
	}

	opts := ui.Options{
		Context:     ctx,
		Sorter:      s,
		InitialSort: config.InitialSort,
		Logger:      logger,
	}
	if config.Live {
		opts.Subscribe = func(ctx context.Context) (ui.EventSource, error) {
			return client.Subscribe(ctx)
		}
	}

	logger.Printf("dexrun %s connecting to %s", version, client.BaseURL())

	// Create and run Bubble Tea app
	p := tea.NewProgram(ui.New(client, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
