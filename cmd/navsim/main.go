// navsim runs a tick-driven naval wargame: it loads a scenario, advances
// the simulation clock, and records unit states and combat events to the
// configured storage backend. Finished recordings can be uploaded to the
// replay web frontend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/navwar/navsim/internal/api"
	"github.com/navwar/navsim/internal/config"
	"github.com/navwar/navsim/internal/database"
	"github.com/navwar/navsim/internal/dispatcher"
	"github.com/navwar/navsim/internal/handlers"
	"github.com/navwar/navsim/internal/influx"
	"github.com/navwar/navsim/internal/logging"
	intOtel "github.com/navwar/navsim/internal/otel"
	"github.com/navwar/navsim/internal/storage"
	"github.com/navwar/navsim/internal/worker"
	"github.com/navwar/navsim/pkg/core"
)

// Version and BuildDate can be set at build time via ldflags.
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	AppName string = "navsim"
)

var (
	SessionStartTime time.Time = time.Now()

	SlogManager *logging.SlogManager
	Logger      *slog.Logger

	OTelProvider *intOtel.Provider

	DBManager     *database.Manager
	InfluxManager *influx.Manager

	storageBackend  storage.Backend
	recorder        *worker.Manager
	eventDispatcher *dispatcher.Dispatcher
	service         *handlers.Service
)

func main() {
	var (
		configDir    = flag.String("config", ".", "directory containing navsim.cfg.json")
		scenarioPath = flag.String("scenario", "", "scenario file (overrides config; empty uses the built-in scenario)")
		gameName     = flag.String("name", "", "game name (defaults to the scenario name)")
		maxTicks     = flag.Uint64("ticks", 0, "run this many ticks as fast as possible, then exit (0 = realtime)")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (built %s)\n", AppName, Version, BuildDate)
		return
	}

	if err := run(*configDir, *scenarioPath, *gameName, *maxTicks); err != nil {
		if Logger != nil {
			Logger.Error("Fatal error", "error", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(configDir, scenarioPath, gameName string, maxTicks uint64) error {
	if err := config.Load(configDir); err != nil {
		// Defaults cover everything; a missing config file is not fatal.
		fmt.Fprintf(os.Stderr, "using default configuration: %v\n", err)
	}

	if err := setupOTel(); err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	if err := setupLogging(); err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	Logger.Info("Starting up", "version", Version, "buildDate", BuildDate)

	setupDatabase()
	setupInflux()

	if err := setupStorage(); err != nil {
		return fmt.Errorf("setting up storage: %w", err)
	}
	defer storageBackend.Close()

	if err := setupDispatcher(); err != nil {
		return fmt.Errorf("setting up dispatcher: %w", err)
	}

	simCfg := config.GetSimConfig()
	if scenarioPath == "" {
		scenarioPath = simCfg.ScenarioPath
	}
	if maxTicks == 0 {
		maxTicks = simCfg.MaxTicks
	}

	if err := createGame(gameName, simCfg); err != nil {
		return err
	}
	if err := loadScenario(scenarioPath); err != nil {
		return err
	}
	if _, err := eventDispatcher.Dispatch(dispatcher.Event{Command: "game:start"}); err != nil {
		return fmt.Errorf("starting game: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runSimulation(ctx, maxTicks, simCfg.RealtimeInterval)

	return finalize()
}

func setupOTel() error {
	cfg := config.GetOTelConfig()

	otelCfg := intOtel.Config{
		Enabled:      cfg.Enabled,
		ServiceName:  cfg.ServiceName,
		BatchTimeout: cfg.BatchTimeout,
		Endpoint:     cfg.Endpoint,
		Insecure:     cfg.Insecure,
	}
	if cfg.Enabled {
		logsDir := config.GetString("logsDir")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(logsDir,
			fmt.Sprintf("%s.otel.%s.log", AppName, SessionStartTime.Format("20060102_150405"))))
		if err != nil {
			return err
		}
		otelCfg.LogWriter = f
	}

	var err error
	OTelProvider, err = intOtel.New(otelCfg)
	return err
}

func setupLogging() error {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return err
	}

	logFile, err := os.Create(logging.LogFilePath(logsDir, AppName, SessionStartTime))
	if err != nil {
		return err
	}

	var provider *sdklog.LoggerProvider
	if OTelProvider != nil {
		provider = OTelProvider.LoggerProvider()
	}

	var extra []slog.Handler
	if config.GetBool("graylog.enabled") {
		gelfHandler, err := logging.NewGelfHandler(config.GetString("graylog.address"), slog.LevelInfo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog unavailable, continuing without it: %v\n", err)
		} else {
			extra = append(extra, gelfHandler)
		}
	}

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(logFile, config.GetString("logLevel"), provider, extra...)
	Logger = SlogManager.Logger()
	return nil
}

// setupDatabase connects only when the database backend is selected. The
// manager falls back to local sqlite when postgres is unreachable.
func setupDatabase() {
	if config.GetStorageConfig().Type != "database" {
		return
	}

	zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
	DBManager = database.NewManager(zl)
	if err := DBManager.Connect(); err != nil {
		Logger.Warn("Database connection failed, falling back to memory storage", "error", err)
		DBManager = nil
		return
	}
	if DBManager.ShouldSaveLocal {
		outputDir := config.GetString("storage.memory.outputDir")
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			Logger.Warn("Creating output directory failed", "dir", outputDir, "error", err)
		}
		DBManager.SqliteFilePath = filepath.Join(outputDir,
			fmt.Sprintf("%s_%s.db", AppName, SessionStartTime.Format("20060102_150405")))
	}
}

func setupInflux() {
	if !config.GetBool("influx.enabled") {
		return
	}

	backupPath := filepath.Join(config.GetString("logsDir"),
		fmt.Sprintf("%s.influx_backup.%s.gz", AppName, SessionStartTime.Format("20060102_150405")))
	zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
	InfluxManager = influx.NewManager(zl, backupPath)
	if err := InfluxManager.Connect(); err != nil {
		Logger.Warn("InfluxDB unavailable, metrics disabled", "error", err)
		InfluxManager = nil
	}
}

func setupStorage() error {
	storageCfg := config.GetStorageConfig()
	if storageCfg.Type == "database" && DBManager == nil {
		storageCfg.Type = "memory"
	}

	backend, err := storage.NewBackend(storageCfg, DBManager)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return err
	}
	storageBackend = backend
	recorder = worker.NewManager(storageBackend, Logger)
	Logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}

func setupDispatcher() error {
	d, err := dispatcher.New(Logger)
	if err != nil {
		return err
	}
	eventDispatcher = d

	service = handlers.NewService(handlers.Dependencies{
		Backend:  storageBackend,
		Recorder: recorder,
		Logger:   Logger,
	})
	service.RegisterHandlers(eventDispatcher)
	return nil
}

func createGame(name string, simCfg config.SimConfig) error {
	if name == "" {
		name = fmt.Sprintf("%s %s", AppName, SessionStartTime.Format("2006-01-02 15:04"))
	}
	payload, err := json.Marshal(map[string]any{
		"name":            name,
		"tickRateSeconds": simCfg.TickRate.Seconds(),
		"graceTicks":      simCfg.GraceTicks,
	})
	if err != nil {
		return err
	}
	if _, err := eventDispatcher.Dispatch(dispatcher.Event{
		Command: "game:create",
		Payload: payload,
	}); err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func loadScenario(path string) error {
	payload, err := json.Marshal(map[string]any{"path": path})
	if err != nil {
		return err
	}
	result, err := eventDispatcher.Dispatch(dispatcher.Event{
		Command: "scenario:load",
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	Logger.Info("Scenario loaded", "result", result)
	return nil
}

// runSimulation drives the tick loop. With maxTicks set the loop runs flat
// out; otherwise one tick fires per realtime interval until interrupted or
// the game completes.
func runSimulation(ctx context.Context, maxTicks uint64, interval time.Duration) {
	orch := service.Orchestrator()
	factions := unitFactions()

	tickOnce := func() bool {
		tickStart := time.Now()
		if err := orch.Tick(); err != nil {
			Logger.Error("Tick failed", "error", err)
			return false
		}
		recorder.Flush()
		emitMetrics(orch.Meta().Name, orch.Time().Tick(), factions, time.Since(tickStart))
		return orch.State() != "completed"
	}

	if maxTicks > 0 {
		for i := uint64(0); i < maxTicks; i++ {
			if ctx.Err() != nil || !tickOnce() {
				break
			}
		}
		return
	}

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			Logger.Info("Interrupted, shutting down")
			return
		case <-ticker.C:
			if !tickOnce() {
				return
			}
		}
	}
}

// unitFactions maps unit IDs to factions for metric tagging.
func unitFactions() map[string]string {
	factions := make(map[string]string)
	for _, info := range service.Orchestrator().UnitInfos() {
		factions[info.ID.String()] = info.Faction
	}
	return factions
}

func emitMetrics(gameName string, tick uint64, factions map[string]string, tickDuration time.Duration) {
	if InfluxManager == nil {
		return
	}

	ctx := context.Background()
	snap := service.Orchestrator().Snapshot()

	perf := influx.TickPerformancePoint(gameName, tick, len(snap.Units), tickDuration)
	if err := InfluxManager.WritePoint(ctx, influx.BucketSimPerformance, perf); err != nil {
		Logger.Debug("Metric write failed", "error", err)
	}

	type fleetTally struct {
		active      int
		sinking     int
		totalHealth float64
	}
	tallies := make(map[string]*fleetTally)
	for _, u := range snap.Units {
		faction := factions[u.UnitID.String()]
		t, ok := tallies[faction]
		if !ok {
			t = &fleetTally{}
			tallies[faction] = t
		}
		if u.State == "sinking" {
			t.sinking++
		} else {
			t.active++
		}
		t.totalHealth += u.Health
	}

	clock := service.Orchestrator().Time()
	ts := core.TimeState{
		Tick:        clock.Tick(),
		GameTime:    clock.Now(),
		RatePerTick: clock.Rate(),
	}
	for faction, t := range tallies {
		p := influx.FleetStatePoint(gameName, faction, ts, t.active, t.sinking, t.totalHealth)
		if err := InfluxManager.WritePoint(ctx, influx.BucketSimData, p); err != nil {
			Logger.Debug("Metric write failed", "error", err)
		}
	}
}

// finalize stops the game, flushes all recorders, and uploads the exported
// recording when the web frontend is reachable.
func finalize() error {
	orch := service.Orchestrator()
	if _, err := eventDispatcher.Dispatch(dispatcher.Event{Command: "game:stop"}); err != nil {
		Logger.Warn("Stopping game failed", "error", err)
	}
	recorder.Flush()

	finalTick := orch.Time().Tick()
	if err := storageBackend.EndGame(finalTick); err != nil {
		Logger.Error("Finalizing recording failed", "error", err)
	}
	Logger.Info("Game recording finalized", "finalTick", finalTick)

	if DBManager != nil && DBManager.ShouldSaveLocal {
		if err := DBManager.DumpMemoryToDisk(); err != nil {
			Logger.Error("Dumping local database to disk failed", "error", err)
		}
	}

	uploadRecording(orch.Meta().Name, orch.Time().Elapsed().Seconds())

	if InfluxManager != nil {
		if err := InfluxManager.Close(); err != nil {
			Logger.Warn("Closing InfluxDB manager failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Warn("Log flush failed", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}
	return nil
}

func uploadRecording(gameName string, gameDurationSeconds float64) {
	uploadable, ok := storageBackend.(storage.Uploadable)
	if !ok {
		return
	}
	exportPath := uploadable.GetExportedFilePath()
	if exportPath == "" {
		return
	}

	client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		Logger.Warn("Web frontend unreachable, keeping local export only",
			"path", exportPath, "error", err)
		return
	}

	meta := api.UploadMetadata{
		GameName:     gameName,
		ScenarioName: gameName,
		GameDuration: gameDurationSeconds,
		Tag:          config.GetString("api.tag"),
	}
	if err := client.Upload(exportPath, meta); err != nil {
		Logger.Error("Recording upload failed", "path", exportPath, "error", err)
		return
	}
	Logger.Info("Recording uploaded", "path", exportPath)
}
