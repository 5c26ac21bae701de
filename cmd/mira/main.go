package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mirahq/mira/internal/api"
	"github.com/mirahq/mira/internal/chats"
	"github.com/mirahq/mira/internal/config"
	"github.com/mirahq/mira/internal/directory"
	"github.com/mirahq/mira/internal/messages"
	"github.com/mirahq/mira/internal/session"
	"github.com/mirahq/mira/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parse flags
	var (
		showVersion  = flag.Bool("version", false, "Show version and exit")
		configPath   = flag.String("config", "config.toml", "Path to config file")
		debug        = flag.Bool("debug", false, "Enable debug logging")
		apiBase      = flag.String("api", "", "Override API base URL (http/https)")
		clientSlug   = flag.String("client", "", "Client slug")
		systemHint   = flag.String("system", "", "Explicit system hint (overrides derived hint)")
		instanceHint = flag.String("inst", "", "Preferred instance id or name substring")
		autologin    = flag.String("autologin", "", "Skip the login gate (1|true|yes)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mira %s\n", Version)
		os.Exit(0)
	}

	// Initialize logging
	if err := initLogging(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", Version).Msg("Starting mira")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Flags override file and environment.
	if *apiBase != "" {
		cfg.API.Base = *apiBase
	}
	if *clientSlug != "" {
		cfg.Client.Slug = *clientSlug
	}
	if *systemHint != "" {
		cfg.Client.SystemHint = *systemHint
	}
	if *instanceHint != "" {
		cfg.Client.InstanceHint = *instanceHint
	}
	if *autologin != "" {
		cfg.UI.AutoLogin = config.Truthy(*autologin)
	}
	log.Debug().Interface("config", cfg).Msg("Configuration loaded")

	// Initialize the API client
	client, err := api.NewClient(cfg.API.Base)
	if err != nil {
		log.Fatal().Err(err).Str("base", cfg.API.Base).Msg("Invalid API base")
	}

	// Assemble the core components around one session state.
	st := session.New()
	dir := directory.New(client, cfg.Client.Slug, cfg.Client.SystemHint, cfg.Client.InstanceHint)
	chatMgr := chats.NewManager(client)
	msgLoader := messages.NewLoader(client)

	model := tui.New(st, dir, chatMgr, msgLoader, client, tui.Options{
		AccessCode:  cfg.UI.AccessCode,
		AutoLogin:   cfg.UI.AutoLogin,
		NarrowWidth: cfg.UI.NarrowWidth,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal().Err(err).Msg("TUI error")
	}

	log.Info().Msg("mira shutting down")
}

func initLogging(debug bool) error {
	// Ensure data directory exists
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	// Open log file (truncate on startup)
	logPath := filepath.Join(dataDir, "mira.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	return nil
}
