package main

import (
	"context"
	"errors"
	"time"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/internal/core/services"
	"airlink/internal/infrastructure/repositories"
	"airlink/pkg/config"
	"airlink/pkg/logger"
)

// Seeds the demo license set so a fresh deployment can be exercised without
// going through the admin API first. Safe to run repeatedly.
func main() {
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/airlink/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repoFactory, err := repositories.NewRepositoryFactory(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	licenseService := services.NewLicenseService(
		repoFactory.CreateLicenseRepository(), nil, nil, log,
	)

	demo := []ports.CreateLicenseParams{
		{Code: "TRIAL-10", MaxListeners: 10, Active: true},
		{Code: "PRO-25", MaxListeners: 25, Active: true},
		{Code: "PLUS-35", MaxListeners: 35, Active: true},
		{Code: "MAX-100", MaxListeners: 100, Active: true},
	}

	for _, params := range demo {
		lic, err := licenseService.Create(ctx, params)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateLicense) {
				log.Infow("license already seeded", "code", params.Code)
				continue
			}
			log.Fatalw("failed to seed license", "code", params.Code, "error", err)
		}
		log.Infow("seeded license",
			"code", lic.Code,
			"max_listeners", lic.MaxListeners,
			"duration_minutes", lic.DurationMinutes,
		)
	}
}
