package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/uvmon/uvmon/internal/app"
	"github.com/uvmon/uvmon/internal/constants"
	"github.com/uvmon/uvmon/internal/log"
	"github.com/uvmon/uvmon/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml, uvmon.yaml\n\t\t\t  SQLite: config.db, uvmon.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("uvmon %s\n", constants.Version)
		os.Exit(0)
	}

	// Pull broker credentials and the like from a .env file if one exists
	_ = godotenv.Load()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider, err := newProvider(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	application := app.New(provider, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

func newProvider(cfgFile, cfgBackend string) (config.ConfigProvider, error) {
	filename, _ := filepath.Abs(cfgFile)

	switch cfgBackend {
	case "yaml":
		return config.NewYAMLProvider(filename), nil
	case "sqlite":
		provider, err := config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
}
