// Package app wires storage and services into the core shared by
// cmd/tally-server and cmd/tally.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/display"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/services/ledger"
	"github.com/bobmcallan/tally/internal/services/portfolio"
	"github.com/bobmcallan/tally/internal/services/pricefeed"
	"github.com/bobmcallan/tally/internal/services/records"
	"github.com/bobmcallan/tally/internal/services/report"
	"github.com/bobmcallan/tally/internal/storage"
)

// App holds all initialized services.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	RecordService    *records.Service
	LedgerService    interfaces.LedgerService
	ReportService    interfaces.ReportService
	PortfolioService interfaces.PortfolioService
	PriceFeed        *pricefeed.Task
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, TALLY_CONFIG,
// tally.toml next to the binary, then config/tally.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("TALLY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "tally.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tally.toml"
		}
	}
	return configPath
}

// NewApp loads configuration and initializes storage and services.
// configPath may be empty, in which case ResolveConfigPath applies.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	binDir := getBinaryDir()
	if config.Storage.Backend == common.BackendBadger && config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	return NewAppWithConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig initializes storage and services from an already-loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	recordService := records.NewService(storageManager, logger)
	ledgerService := ledger.NewService(recordService, logger)
	reportService := report.NewService(recordService, ledgerService, logger)
	portfolioService := portfolio.NewService(recordService, logger)
	priceFeed := pricefeed.NewTask(recordService, config.PriceFeed, logger)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		RecordService:    recordService,
		LedgerService:    ledgerService,
		ReportService:    reportService,
		PortfolioService: portfolioService,
		PriceFeed:        priceFeed,
		StartupTime:      startupStart,
	}

	logger.Info().
		Str("backend", storageManager.Backend()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")
	return a, nil
}

// Formatter returns the display formatter for the request's user settings.
func (a *App) Formatter(ctx context.Context) *display.Formatter {
	return display.NewFormatter(common.ResolveDisplay(ctx, a.Config.Display))
}

// StartPriceFeed launches the background price feed when it is enabled.
func (a *App) StartPriceFeed() {
	a.PriceFeed.Start(context.Background())
}

// Close releases all resources held by the App.
// Shutdown order: stop the price feed, then close storage.
func (a *App) Close() {
	if a.PriceFeed != nil {
		a.PriceFeed.Stop()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
