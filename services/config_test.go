package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "SQLITE_PATH", "ODOM_TOPIC", "SIM_TICK_MS", "AGENT_TIMEOUT", "LOG_FLUSH_SIZE", "LOG_FLUSH_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfigFromEnv()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "slam.db", cfg.SQLitePath)
	assert.Equal(t, DefaultOdomTopic, cfg.OdomTopic)
	assert.Equal(t, DefaultSimulationTick, cfg.SimTick)
	assert.Equal(t, 10*time.Second, cfg.AgentTimeout)
	assert.Equal(t, 50, cfg.LogFlushSize)
	assert.Equal(t, 10*time.Second, cfg.LogFlushInterval)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("ODOM_TOPIC", "/robot/odom")
	t.Setenv("SIM_TICK_MS", "5")
	t.Setenv("AGENT_TIMEOUT", "3s")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "/robot/odom", cfg.OdomTopic)
	assert.Equal(t, 5*time.Millisecond, cfg.SimTick)
	assert.Equal(t, 3*time.Second, cfg.AgentTimeout)
}

func TestLoadConfigFromEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SIM_TICK_MS", "fast")
	t.Setenv("LOG_FLUSH_SIZE", "-4")
	t.Setenv("LOG_FLUSH_INTERVAL", "soon")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, DefaultSimulationTick, cfg.SimTick)
	assert.Equal(t, 50, cfg.LogFlushSize)
	assert.Equal(t, 10*time.Second, cfg.LogFlushInterval)
}

func TestDialectorFor(t *testing.T) {
	_, err := dialectorFor(Config{DBDriver: "postgres"})
	assert.Error(t, err)

	_, err = dialectorFor(Config{DBDriver: "mysql", MySQLHost: "localhost"})
	assert.Error(t, err)

	d, err := dialectorFor(Config{DBDriver: "mysql", MySQLHost: "db", MySQLPort: 3306, MySQLUser: "u", MySQLPassword: "p", MySQLDatabase: "slam"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = dialectorFor(Config{DBDriver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
}
