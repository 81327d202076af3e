package utils

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Services ServicesConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	EventsTopic string
}

type ServicesConfig struct {
	ScheduleURL    string
	ReservationURL string
	CallTimeout    time.Duration
}

type BookingConfig struct {
	HoldTTL          time.Duration
	ReaperInterval   time.Duration
	ReaperBatchSize  int
	RetryAttempts    int
	RetryBackoff     time.Duration
	ScheduleCacheTTL time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_EVENTS_TOPIC", "booking-events")
	viper.SetDefault("SERVICE_CALL_TIMEOUT_SECONDS", 5)
	viper.SetDefault("HOLD_TTL_SECONDS", 120)
	viper.SetDefault("REAPER_INTERVAL_SECONDS", 30)
	viper.SetDefault("REAPER_BATCH_SIZE", 500)
	viper.SetDefault("RETRY_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BACKOFF_MS", 200)
	viper.SetDefault("SCHEDULE_CACHE_TTL_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
			EventsTopic: viper.GetString("KAFKA_EVENTS_TOPIC"),
		},
		Services: ServicesConfig{
			ScheduleURL:    viper.GetString("SCHEDULE_API_URL"),
			ReservationURL: viper.GetString("RESERVATION_API_URL"),
			CallTimeout:    time.Duration(viper.GetInt("SERVICE_CALL_TIMEOUT_SECONDS")) * time.Second,
		},
		Booking: BookingConfig{
			HoldTTL:          time.Duration(viper.GetInt("HOLD_TTL_SECONDS")) * time.Second,
			ReaperInterval:   time.Duration(viper.GetInt("REAPER_INTERVAL_SECONDS")) * time.Second,
			ReaperBatchSize:  viper.GetInt("REAPER_BATCH_SIZE"),
			RetryAttempts:    viper.GetInt("RETRY_ATTEMPTS"),
			RetryBackoff:     time.Duration(viper.GetInt("RETRY_BACKOFF_MS")) * time.Millisecond,
			ScheduleCacheTTL: time.Duration(viper.GetInt("SCHEDULE_CACHE_TTL_SECONDS")) * time.Second,
		},
	}

	return config, nil
}
