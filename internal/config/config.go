package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/biggslaundromat/laundromat/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MustInit loads .env and config.yaml into viper and installs the default logger.
func MustInit() {
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/laundromat")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("LAUNDROMAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}

	SetupLogger()
}

// SetupLogger installs the slog default logger from log.* keys.
func SetupLogger() {
	handler := logger.NewHandler(&logger.Options{
		Format: logger.Format(viper.GetString("log.format")),
		Level:  logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}

func setDefaults() {
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.level", "info")

	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.grpc.port", "9090")

	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.sslmode", "disable")
	viper.SetDefault("postgres.migrations_path", "./migrations")
	viper.SetDefault("postgres.auto_migrate", true)

	viper.SetDefault("rabbitmq.queue", "laundromat.notifications")
	viper.SetDefault("rabbitmq.consumer_tag", "laundromat-notifier")

	viper.SetDefault("business.name", "BigG's Laundromat")
	viper.SetDefault("business.currency", "KES")
	viper.SetDefault("business.tracking_url", "https://biggslaundromat.co.ke/track/")

	viper.SetDefault("whatsapp.api_url", "https://graph.facebook.com/v18.0/")

	viper.SetDefault("otel.service_name", "laundromat")
	viper.SetDefault("otel.jaeger_endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("otel.sample_ratio", 1.0)
}
