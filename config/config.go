package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Quantum  QuantumConfig  `yaml:"quantum"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	ReferenceLength int `yaml:"reference_length"`
	SeatHoldTTL     int `yaml:"seat_hold_ttl_seconds"`
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds"`
}

// QuantumConfig selects which cryptographic backend each service runs
// on. Resolved once at startup; never per-request.
type QuantumConfig struct {
	KEMBackend       string `yaml:"kem_backend"`
	SignatureBackend string `yaml:"signature_backend"`
	EntropyBackend   string `yaml:"entropy_backend"`

	// DemoMode echoes private key material back in booking responses.
	// A documented demonstration weakness; keep off outside demos.
	DemoMode bool `yaml:"demo_mode"`
}

type WorkerConfig struct {
	CacheWarmSeconds int `yaml:"cache_warm_seconds"`
}

// CacheWarmInterval returns how often the worker refreshes the flights
// cache. Falls back to one minute when the worker section is absent or
// the value is not positive.
func (w WorkerConfig) CacheWarmInterval() time.Duration {
	if w.CacheWarmSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(w.CacheWarmSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
