package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dexrun/internal/sorter"
)

// DefaultServerURL is where the tracker backend listens by default.
const DefaultServerURL = "http://localhost:5000"

// Config holds CLI configuration.
type Config struct {
	ServerURL   string
	ServeAddr   string
	DBPath      string
	SpriteDir   string
	Locale      string
	InitialSort *sorter.Column
	LogPath     string
	Live        bool
	ShowVersion bool

	configDir    string
	serverPinned bool
}

// ParseFlags parses command-line flags and returns configuration. On the
// first interactive launch without a configured server it runs setup.
func ParseFlags(version string, args []string) (*Config, error) {
	// Load .env files first so env-based defaults work with existing flag parsing.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	config, err := parseConfig(version, args, filepath.Join(home, ".dexrun"))
	if err != nil {
		return nil, err
	}
	if config.ShowVersion {
		return config, nil
	}

	if config.DBPath == filepath.Join(config.configDir, "dexrun.db") {
		if err := os.MkdirAll(config.configDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// Setup only matters for the dashboard and only when nothing else
	// named a server.
	if config.ServeAddr != "" || config.serverPinned {
		return config, nil
	}

	settings, err := loadOnboardingSettings(config.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}
	if shouldRunOnboarding(settings) {
		settings, err = runOnboarding(config.configDir, config.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}
	if settings.ServerURL != "" {
		config.ServerURL = settings.ServerURL
	}

	return config, nil
}

// parseConfig reads flags and environment without touching the filesystem.
func parseConfig(version string, args []string, configDir string) (*Config, error) {
	config := &Config{configDir: configDir}

	fs := flag.NewFlagSet("dexrun", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "dexrun %s: Pokémon run leaderboard\n\nUsage:\n", version)
		fs.PrintDefaults()
	}

	var sortName string
	fs.StringVar(&config.ServerURL, "server", "", "Tracker server URL (or set DEXRUN_SERVER; default "+DefaultServerURL+")")
	fs.StringVar(&config.ServeAddr, "serve", "", "Run the tracker backend on this address instead of the dashboard (e.g. :5000)")
	fs.StringVar(&config.DBPath, "db", "", "Path to SQLite database file for -serve (default: ~/.dexrun/dexrun.db)")
	fs.StringVar(&config.SpriteDir, "sprites", "", "Directory holding gifs/ and shiny_gifs/ for -serve")
	fs.StringVar(&config.Locale, "locale", "", "Locale for ordering Pokémon names (or set DEXRUN_LOCALE; default en)")
	fs.StringVar(&sortName, "sort", "", "Sort the leaderboard by this column on load: rank, pokemon, count, last")
	fs.StringVar(&config.LogPath, "log", "", "Write dashboard logs to this file (or set DEXRUN_LOG)")
	fs.BoolVar(&config.Live, "live", true, "Refresh when the server reports new entries")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if config.ServerURL != "" {
		config.serverPinned = true
	} else if env := os.Getenv("DEXRUN_SERVER"); env != "" {
		config.ServerURL = env
		config.serverPinned = true
	} else {
		config.ServerURL = DefaultServerURL
	}

	if config.Locale == "" {
		config.Locale = os.Getenv("DEXRUN_LOCALE")
	}
	if config.Locale == "" {
		config.Locale = "en"
	}

	if config.LogPath == "" {
		config.LogPath = os.Getenv("DEXRUN_LOG")
	}

	if config.DBPath == "" {
		config.DBPath = filepath.Join(configDir, "dexrun.db")
	}

	if sortName != "" {
		c, err := sorter.ParseColumn(sortName)
		if err != nil {
			return nil, fmt.Errorf("invalid -sort: %w", err)
		}
		config.InitialSort = &c
	}

	return config, nil
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
