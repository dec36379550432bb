package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shade_control/internal/handlers"
	"shade_control/internal/logger"
	"shade_control/internal/repository"
	"shade_control/internal/server"
	"shade_control/internal/service"

	"github.com/spf13/viper"
)

const defaultSigningKey = "change-me-in-config"

func main() {
	// load config.yml first so the log level is configurable
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(logLevel())

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, log, signingKey())
	apiHandler := handlers.NewHandler(services, log)

	// start the reconciliation engine with configured settings
	if _, err := services.Scheduler.UpdateSettings(schedulerSettingsFromConfig()); err != nil {
		log.Fatalw("invalid scheduler config", "err", err)
	}
	services.Scheduler.Start()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(services.Scheduler, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log_level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

func signingKey() string {
	if key := viper.GetString("jwt.signing_key"); key != "" {
		return key
	}
	return defaultSigningKey
}

// schedulerSettingsFromConfig maps optional config keys to a settings patch;
// keys left out of the config keep the engine defaults.
func schedulerSettingsFromConfig() service.SettingsPatch {
	var p service.SettingsPatch
	if viper.IsSet("scheduler.interval_minutes") {
		v := viper.GetInt("scheduler.interval_minutes")
		p.IntervalMinutes = &v
	}
	if viper.IsSet("scheduler.override_window_minutes") {
		v := viper.GetInt("scheduler.override_window_minutes")
		p.OverrideWindowMinutes = &v
	}
	if viper.IsSet("scheduler.paused") {
		v := viper.GetBool("scheduler.paused")
		p.Paused = &v
	}
	return p
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "shade_system.db")
		dbPath = "shade_system.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(scheduler service.Scheduler, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the engine; an in-flight tick completes first
	scheduler.Stop()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
