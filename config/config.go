package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Models   ModelsConfig
	MQTT     MQTTConfig
	Worker   WorkerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

// ModelEndpoint locates one regression model: a local JSON artifact or a
// model server URL.
type ModelEndpoint struct {
	Path string
	URL  string
}

type ModelsConfig struct {
	AQI       ModelEndpoint
	Forecast  ModelEndpoint
	TimeoutMS int
}

type MQTTConfig struct {
	URL      string
	Topic    string
	ClientID string
}

type WorkerConfig struct {
	MetricsAddr         string
	ForecastIntervalSec int
}

type LogConfig struct {
	Level string
	JSON  bool
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL renders the connection string pgxpool expects.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	modelTimeout, err := getIntEnv("MODEL_TIMEOUT_MS", 5000)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT_MS: %w", err)
	}

	forecastInterval, err := getIntEnv("FORECAST_INTERVAL_SEC", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_INTERVAL_SEC: %w", err)
	}

	logJSON, err := getBoolEnv("LOG_JSON", false)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_JSON: %w", err)
	}

	cfg := &Config{
		Env: getEnv("APP_ENV", "dev"),
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "air_quality_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			ExpiryHours: jwtExpiry,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Models: ModelsConfig{
			AQI: ModelEndpoint{
				Path: getEnv("MODEL_AQI_PATH", "artifacts/aqi_model.json"),
				URL:  getEnv("MODEL_AQI_URL", ""),
			},
			Forecast: ModelEndpoint{
				Path: getEnv("MODEL_FORECAST_PATH", "artifacts/aqi_forecast_model.json"),
				URL:  getEnv("MODEL_FORECAST_URL", ""),
			},
			TimeoutMS: modelTimeout,
		},
		MQTT: MQTTConfig{
			URL:      getEnv("MQTT_URL", "tcp://localhost:1883"),
			Topic:    getEnv("MQTT_TOPIC", "aqi/readings/+"),
			ClientID: getEnv("MQTT_CLIENT_ID", ""),
		},
		Worker: WorkerConfig{
			MetricsAddr:         getEnv("METRICS_ADDR", ":9090"),
			ForecastIntervalSec: forecastInterval,
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
			JSON:  logJSON,
		},
	}

	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		if c.Env != "dev" {
			errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
		}
	}
	if c.JWT.ExpiryHours <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY_HOURS must be positive"))
	}
	for name, ep := range map[string]ModelEndpoint{"aqi": c.Models.AQI, "forecast": c.Models.Forecast} {
		if ep.Path == "" && ep.URL == "" {
			errs = append(errs, fmt.Errorf("model %s needs a path or url", name))
		}
	}
	if c.Worker.ForecastIntervalSec <= 0 {
		errs = append(errs, errors.New("FORECAST_INTERVAL_SEC must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
