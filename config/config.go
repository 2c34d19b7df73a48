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
	Workflow WorkflowConfig `yaml:"workflow"`
	Cache    CacheConfig    `yaml:"cache"`
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
	Brokers           []string `yaml:"brokers"`
	CheckInTopic      string   `yaml:"checkin_topic"`
	RegistrationTopic string   `yaml:"registration_topic"`
	SessionTopic      string   `yaml:"session_topic"`
	AuthTopic         string   `yaml:"auth_topic"`
	OrdersTopic       string   `yaml:"orders_topic"`
	BaggageTopic      string   `yaml:"baggage_topic"`
	RepliesTopic      string   `yaml:"replies_topic"`
	StatusEventsTopic string   `yaml:"status_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

type WorkflowConfig struct {
	AuthLogin             string `yaml:"auth_login"`
	AuthPassword          string `yaml:"auth_password"`
	RPCTimeoutSeconds     int    `yaml:"rpc_timeout_seconds"`
	GatewayTimeoutSeconds int    `yaml:"gateway_timeout_seconds"`
}

func (w WorkflowConfig) RPCTimeout() time.Duration {
	if w.RPCTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(w.RPCTimeoutSeconds) * time.Second
}

// GatewayTimeout bounds the end-to-end checkin.request call. The saga runs up
// to six sequential RPCs inside it, so the default covers all of them at
// their individual budgets.
func (w WorkflowConfig) GatewayTimeout() time.Duration {
	if w.GatewayTimeoutSeconds <= 0 {
		return 6 * w.RPCTimeout()
	}
	return time.Duration(w.GatewayTimeoutSeconds) * time.Second
}

type CacheConfig struct {
	ReservationsTTLSeconds int `yaml:"reservations_ttl_seconds"`
}

func (c CacheConfig) ReservationsTTL() time.Duration {
	return time.Duration(c.ReservationsTTLSeconds) * time.Second
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
