package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	cron_config "github.com/customeros/mailsift/internal/cron/config"
	"github.com/customeros/mailsift/internal/logger"
	"github.com/customeros/mailsift/internal/tracing"
)

type Config struct {
	AppConfig        *AppConfig
	Logger           *logger.Config
	Tracing          *tracing.JaegerConfig
	DatabaseConfig   *DatabaseConfig
	R2StorageConfig  *R2StorageConfig
	IngestionConfig  *IngestionConfig
	GmailConfig      *GmailConfig
	IMAPConfig       *IMAPConfig
	TokenStoreConfig *TokenStoreConfig
	GeminiConfig     *GeminiConfig
	StagingConfig    *StagingConfig
	ExtractionConfig *ExtractionConfig
	CronConfig       *cron_config.Config
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:        &AppConfig{},
		Logger:           &logger.Config{},
		Tracing:          &tracing.JaegerConfig{},
		DatabaseConfig:   &DatabaseConfig{},
		R2StorageConfig:  &R2StorageConfig{},
		IngestionConfig:  &IngestionConfig{},
		GmailConfig:      &GmailConfig{},
		IMAPConfig:       &IMAPConfig{},
		TokenStoreConfig: &TokenStoreConfig{},
		GeminiConfig:     &GeminiConfig{},
		StagingConfig:    &StagingConfig{},
		ExtractionConfig: &ExtractionConfig{},
		CronConfig:       &cron_config.Config{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
