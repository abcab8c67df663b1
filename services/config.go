package services

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config - server settings read from the environment (.env is loaded in main)
type Config struct {
	Port string

	// Database
	DBDriver      string // "mysql" | "sqlite"
	SQLitePath    string
	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string

	// Telemetry / simulation
	OdomTopic    string
	SimTick      time.Duration
	AgentTimeout time.Duration

	// Event log buffer
	LogFlushSize     int
	LogFlushInterval time.Duration

	CORSOrigins string
}

// LoadConfigFromEnv - Config with defaults for unset or malformed values
func LoadConfigFromEnv() Config {
	return Config{
		Port:          envString("PORT", "3000"),
		DBDriver:      strings.ToLower(envString("DB_DRIVER", "sqlite")),
		SQLitePath:    envString("SQLITE_PATH", "slam.db"),
		MySQLHost:     os.Getenv("MYSQL_HOST"),
		MySQLPort:     envInt("MYSQL_PORT", 3306),
		MySQLUser:     os.Getenv("MYSQL_USER"),
		MySQLPassword: os.Getenv("MYSQL_PASSWORD"),
		MySQLDatabase: os.Getenv("MYSQL_DATABASE"),

		OdomTopic:    envString("ODOM_TOPIC", DefaultOdomTopic),
		SimTick:      time.Duration(envInt("SIM_TICK_MS", int(DefaultSimulationTick/time.Millisecond))) * time.Millisecond,
		AgentTimeout: envDuration("AGENT_TIMEOUT", 10*time.Second),

		LogFlushSize:     envInt("LOG_FLUSH_SIZE", 50),
		LogFlushInterval: envDuration("LOG_FLUSH_INTERVAL", 10*time.Second),

		CORSOrigins: envString("CORS_ORIGINS", "http://localhost:5173, http://localhost:3000"),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("⚠️  invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("⚠️  invalid %s=%q, using %v", key, v, def)
		return def
	}
	return d
}
