package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MemoryDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ADMIN_EXTERNAL_IDS", " alice , bob,,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"alice", "bob"}, cfg.AdminExternalIDs)
	assert.Equal(t, 2, cfg.ReferralPercent)
	assert.Equal(t, 3, cfg.TxMaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.DepositPollInterval)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, BroadcastNone, cfg.BroadcastDriver)
}

func TestLoadConfig_Validation(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("PGSQL_URL", "")
	_, err := LoadConfig()
	assert.Error(t, err, "postgres without a URL must fail")

	viper.Reset()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("BROADCAST_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")
	_, err = LoadConfig()
	assert.Error(t, err, "redis broadcaster without a URL must fail")

	viper.Reset()
	t.Setenv("BROADCAST_DRIVER", "none")
	t.Setenv("REFERRAL_PERCENT", "101")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDurationFallsBack(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DEPOSIT_POLL_INTERVAL", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.DepositPollInterval)
}
