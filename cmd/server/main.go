// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-drive-keeper/internal/config"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/service"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/internal/workers"
	"github.com/MKhiriev/go-drive-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(build)

	log := logger.NewLogger("go-drive-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	if err = logger.SetLevel(cfg.App.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("error setting log level")
	}

	log.Debug().Str("driver", cfg.Storage.DB.Driver).Int("block_size", cfg.Storage.Blocks.BlockSize).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	documents, err := store.NewStore(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating document store")
	}
	defer documents.Close()

	if cfg.App.Version == "" {
		cfg.App.Version = build.BuildVersion()
	}

	services, err := service.NewServices(documents, *cfg, build, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}
	defer services.Shutdown()

	if cfg.App.AdminMasterPassword != "" {
		key, err := adminKey(ctx, services, cfg.App.AdminMasterPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("error unlocking admin key")
		}
		services.UseAdminKey(key)
	}

	background := workers.NewWorkers(
		workers.NewSessionCleanupWorker(services.AuthService, cfg.Workers.SessionCleanupInterval, log),
	)
	background.Run(ctx)

	log.Info().
		Str("version", services.AppInfoService.GetAppVersion(ctx)).
		Stringer("build", services.AppInfoService.GetBuildInfo(ctx)).
		Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	background.Wait()
}

// adminKey unlocks the admin master key, initialising it on first start.
func adminKey(ctx context.Context, services *service.Services, masterPassword string) (unlock.AdminKey, error) {
	key, err := services.AdminService.UnlockAdminKey(ctx, masterPassword)
	if errors.Is(err, service.ErrAdminKeyMissing) {
		return services.AdminService.InitAdminKey(ctx, masterPassword)
	}
	return key, err
}

func printBuildInfo(build models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", build.BuildVersion())
	fmt.Printf("Build date: %s\n", build.BuildDate())
	fmt.Printf("Build commit: %s\n", build.BuildCommit())
}
