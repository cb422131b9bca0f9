package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "BACKOFFICE_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "BACKOFFICE_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "BACKOFFICE_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "BACKOFFICE_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BACKOFFICE_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "BACKOFFICE_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "BACKOFFICE_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "BACKOFFICE_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "BACKOFFICE_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "BACKOFFICE_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "BACKOFFICE_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "BACKOFFICE_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BACKOFFICE_TEST_BOOL_UNSET", setVal: nil, fallback: false, want: false},
		{name: "fallback true when unset", key: "BACKOFFICE_TEST_BOOL_UNSETTRUE", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "BACKOFFICE_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "BACKOFFICE_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "BACKOFFICE_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "parses 0", key: "BACKOFFICE_TEST_BOOL_ZERO", setVal: strPtr("0"), fallback: true, want: false},
		{name: "parses TRUE uppercase", key: "BACKOFFICE_TEST_BOOL_UPPER", setVal: strPtr("TRUE"), fallback: false, want: true},
		{name: "parses t", key: "BACKOFFICE_TEST_BOOL_T", setVal: strPtr("t"), fallback: false, want: true},
		{name: "errors on invalid", key: "BACKOFFICE_TEST_BOOL_INV", setVal: strPtr("yes"), fallback: false, wantErr: true},
		{name: "errors on numeric non-bool", key: "BACKOFFICE_TEST_BOOL_NUM", setVal: strPtr("2"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BACKOFFICE_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "BACKOFFICE_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "BACKOFFICE_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "BACKOFFICE_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "BACKOFFICE_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses nanosecond", key: "BACKOFFICE_TEST_DUR_NS", setVal: strPtr("1ns"), fallback: 0, want: time.Nanosecond},
		{name: "parses zero", key: "BACKOFFICE_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "BACKOFFICE_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "BACKOFFICE_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback float64
		want     float64
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "BACKOFFICE_TEST_FLOAT_UNSET", setVal: nil, fallback: 0.9, want: 0.9},
		{name: "parses decimal", key: "BACKOFFICE_TEST_FLOAT_DEC", setVal: strPtr("0.92"), fallback: 0, want: 0.92},
		{name: "parses integer", key: "BACKOFFICE_TEST_FLOAT_INT", setVal: strPtr("1"), fallback: 0, want: 1},
		{name: "parses exponent", key: "BACKOFFICE_TEST_FLOAT_EXP", setVal: strPtr("9.9e-1"), fallback: 0, want: 0.99},
		{name: "returns fallback for empty string", key: "BACKOFFICE_TEST_FLOAT_EMPTY", setVal: strPtr(""), fallback: 0.5, want: 0.5},
		{name: "errors on non-numeric", key: "BACKOFFICE_TEST_FLOAT_NAN", setVal: strPtr("ninety"), fallback: 0, wantErr: true},
		{name: "errors on percent", key: "BACKOFFICE_TEST_FLOAT_PCT", setVal: strPtr("90%"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvFloat(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		// Store backend
		{name: "unknown backend", envKey: "BACKOFFICE_STORE_BACKEND", envVal: "mongo", errMsg: "BACKOFFICE_STORE_BACKEND"},

		// DB_PORT parse errors
		{name: "DB_PORT not a number", envKey: "BACKOFFICE_DB_PORT", envVal: "abc", errMsg: "BACKOFFICE_DB_PORT"},
		{name: "DB_PORT float", envKey: "BACKOFFICE_DB_PORT", envVal: "3.14", errMsg: "BACKOFFICE_DB_PORT"},

		// DB_PORT validation errors (parses fine, fails bounds)
		{name: "DB_PORT zero", envKey: "BACKOFFICE_DB_PORT", envVal: "0", errMsg: "BACKOFFICE_DB_PORT"},
		{name: "DB_PORT too high", envKey: "BACKOFFICE_DB_PORT", envVal: "65536", errMsg: "BACKOFFICE_DB_PORT"},

		// DB_MAX_CONNS
		{name: "DB_MAX_CONNS zero", envKey: "BACKOFFICE_DB_MAX_CONNS", envVal: "0", errMsg: "BACKOFFICE_DB_MAX_CONNS"},
		{name: "DB_MAX_CONNS not a number", envKey: "BACKOFFICE_DB_MAX_CONNS", envVal: "many", errMsg: "BACKOFFICE_DB_MAX_CONNS"},

		// Redis DB
		{name: "REDIS_DB not a number", envKey: "BACKOFFICE_REDIS_DB", envVal: "abc", errMsg: "BACKOFFICE_REDIS_DB"},

		// Gateway delays
		{name: "MIN_DELAY invalid", envKey: "BACKOFFICE_GATEWAY_MIN_DELAY", envVal: "soon", errMsg: "BACKOFFICE_GATEWAY_MIN_DELAY"},
		{name: "MIN_DELAY negative", envKey: "BACKOFFICE_GATEWAY_MIN_DELAY", envVal: "-1ms", errMsg: "BACKOFFICE_GATEWAY_MIN_DELAY"},
		{name: "MAX_DELAY bare number", envKey: "BACKOFFICE_GATEWAY_MAX_DELAY", envVal: "1800", errMsg: "BACKOFFICE_GATEWAY_MAX_DELAY"},
		{name: "MAX_DELAY below MIN_DELAY", envKey: "BACKOFFICE_GATEWAY_MAX_DELAY", envVal: "500ms", errMsg: "BACKOFFICE_GATEWAY_MAX_DELAY"},

		// Gateway rates
		{name: "BANK_RATE invalid", envKey: "BACKOFFICE_GATEWAY_BANK_RATE", envVal: "high", errMsg: "BACKOFFICE_GATEWAY_BANK_RATE"},
		{name: "BANK_RATE above one", envKey: "BACKOFFICE_GATEWAY_BANK_RATE", envVal: "1.5", errMsg: "BACKOFFICE_GATEWAY_BANK_RATE"},
		{name: "MOMO_RATE negative", envKey: "BACKOFFICE_GATEWAY_MOMO_RATE", envVal: "-0.1", errMsg: "BACKOFFICE_GATEWAY_MOMO_RATE"},
		{name: "DEFAULT_RATE above one", envKey: "BACKOFFICE_GATEWAY_DEFAULT_RATE", envVal: "2", errMsg: "BACKOFFICE_GATEWAY_DEFAULT_RATE"},

		// Payslip
		{name: "PAYSLIP_PDF not a bool", envKey: "BACKOFFICE_PAYSLIP_PDF", envVal: "yes", errMsg: "BACKOFFICE_PAYSLIP_PDF"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() edge cases -- boundary values
// ---------------------------------------------------------------------------

func TestLoad_BoundaryValues(t *testing.T) {
	tests := []struct {
		name     string
		envs     map[string]string
		assertFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "port max boundary 65535",
			envs: map[string]string{"BACKOFFICE_DB_PORT": "65535"},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 65535, cfg.Database.Port)
			},
		},
		{
			name: "zero delay window",
			envs: map[string]string{
				"BACKOFFICE_GATEWAY_MIN_DELAY": "0s",
				"BACKOFFICE_GATEWAY_MAX_DELAY": "0s",
			},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, time.Duration(0), cfg.Gateway.MinDelay)
				assert.Equal(t, time.Duration(0), cfg.Gateway.MaxDelay)
			},
		},
		{
			name: "rates at 0 and 1",
			envs: map[string]string{
				"BACKOFFICE_GATEWAY_BANK_RATE":    "0",
				"BACKOFFICE_GATEWAY_DEFAULT_RATE": "1",
			},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.InDelta(t, 0.0, cfg.Gateway.BankRate, 0)
				assert.InDelta(t, 1.0, cfg.Gateway.DefaultRate, 0)
			},
		},
		{
			name: "backend is case-insensitive",
			envs: map[string]string{"BACKOFFICE_STORE_BACKEND": "Redis"},
			assertFn: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, BackendRedis, cfg.Store.Backend)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envs {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tc.assertFn(t, cfg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "FLAWLESS", cfg.DefaultOrg)

	// Store defaults.
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "backoffice.db", cfg.Store.SQLitePath)

	// Database defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "backoffice", cfg.Database.User)
	assert.Empty(t, cfg.Database.Password)
	assert.Equal(t, "backoffice_dev", cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Database.MaxConns)

	// Redis defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	// Gateway defaults.
	assert.Equal(t, 800*time.Millisecond, cfg.Gateway.MinDelay)
	assert.Equal(t, 1800*time.Millisecond, cfg.Gateway.MaxDelay)
	assert.InDelta(t, 0.90, cfg.Gateway.BankRate, 0)
	assert.InDelta(t, 0.92, cfg.Gateway.MomoRate, 0)
	assert.InDelta(t, 0.99, cfg.Gateway.DefaultRate, 0)

	// Payslip defaults.
	assert.Equal(t, ".", cfg.Payslip.Dir)
	assert.True(t, cfg.Payslip.PDFEnabled)
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		"BACKOFFICE_DEFAULT_ORG": "ACME",
		// Store
		"BACKOFFICE_STORE_BACKEND": "postgres",
		"BACKOFFICE_SQLITE_PATH":   "/var/lib/backoffice/data.db",
		// Database
		"BACKOFFICE_DB_HOST":      "db.prod.internal",
		"BACKOFFICE_DB_PORT":      "5433",
		"BACKOFFICE_DB_USER":      "prod_user",
		"BACKOFFICE_DB_PASSWORD":  "s3cret!",
		"BACKOFFICE_DB_NAME":      "backoffice_prod",
		"BACKOFFICE_DB_SSLMODE":   "require",
		"BACKOFFICE_DB_MAX_CONNS": "50",
		// Redis
		"BACKOFFICE_REDIS_ADDR":     "redis.prod:6380",
		"BACKOFFICE_REDIS_PASSWORD": "redis-pass",
		"BACKOFFICE_REDIS_DB":       "3",
		// Gateway
		"BACKOFFICE_GATEWAY_MIN_DELAY":    "10ms",
		"BACKOFFICE_GATEWAY_MAX_DELAY":    "20ms",
		"BACKOFFICE_GATEWAY_BANK_RATE":    "0.5",
		"BACKOFFICE_GATEWAY_MOMO_RATE":    "0.6",
		"BACKOFFICE_GATEWAY_DEFAULT_RATE": "0.7",
		// Payslip
		"BACKOFFICE_PAYSLIP_DIR": "/tmp/payslips",
		"BACKOFFICE_PAYSLIP_PDF": "false",
	}

	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "ACME", cfg.DefaultOrg)

	// Store
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/backoffice/data.db", cfg.Store.SQLitePath)

	// Database
	assert.Equal(t, "db.prod.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "prod_user", cfg.Database.User)
	assert.Equal(t, "s3cret!", cfg.Database.Password)
	assert.Equal(t, "backoffice_prod", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 50, cfg.Database.MaxConns)

	// Redis
	assert.Equal(t, "redis.prod:6380", cfg.Redis.Addr)
	assert.Equal(t, "redis-pass", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)

	// Gateway
	assert.Equal(t, 10*time.Millisecond, cfg.Gateway.MinDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.Gateway.MaxDelay)
	assert.InDelta(t, 0.5, cfg.Gateway.BankRate, 0)
	assert.InDelta(t, 0.6, cfg.Gateway.MomoRate, 0)
	assert.InDelta(t, 0.7, cfg.Gateway.DefaultRate, 0)

	// Payslip
	assert.Equal(t, "/tmp/payslips", cfg.Payslip.Dir)
	assert.False(t, cfg.Payslip.PDFEnabled)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "backoffice",
				Password: "", DBName: "backoffice_dev", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=backoffice password= dbname=backoffice_dev sslmode=disable",
		},
		{
			name: "special characters in password",
			cfg: DatabaseConfig{
				Host: "h", Port: 1, User: "u",
				Password: "p=a&b c", DBName: "d", SSLMode: "s",
			},
			want: "host=h port=1 user=u password=p=a&b c dbname=d sslmode=s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	// validBase returns a Config that passes validation.
	validBase := func() *Config {
		return &Config{
			DefaultOrg: "FLAWLESS",
			Store:      StoreConfig{Backend: BackendSQLite, SQLitePath: "x.db"},
			Database:   DatabaseConfig{Port: 5432, MaxConns: 10},
			Gateway: GatewayConfig{
				MinDelay:    800 * time.Millisecond,
				MaxDelay:    1800 * time.Millisecond,
				BankRate:    0.9,
				MomoRate:    0.92,
				DefaultRate: 0.99,
			},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validBase().validate())
	})

	t.Run("every backend passes", func(t *testing.T) {
		t.Parallel()
		for _, b := range []string{BackendMemory, BackendSQLite, BackendRedis, BackendPostgres} {
			c := validBase()
			c.Store.Backend = b
			assert.NoError(t, c.validate(), b)
		}
	})

	t.Run("empty sqlite path fails for sqlite", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Store.SQLitePath = ""
		assert.ErrorContains(t, c.validate(), "BACKOFFICE_SQLITE_PATH")
	})

	t.Run("empty sqlite path ignored for memory", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Store.Backend = BackendMemory
		c.Store.SQLitePath = ""
		assert.NoError(t, c.validate())
	})

	t.Run("equal delays pass", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Gateway.MaxDelay = c.Gateway.MinDelay
		assert.NoError(t, c.validate())
	})

	t.Run("MaxConns negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.MaxConns = -10
		assert.ErrorContains(t, c.validate(), "BACKOFFICE_DB_MAX_CONNS")
	})

	t.Run("port negative fails", func(t *testing.T) {
		t.Parallel()
		c := validBase()
		c.Database.Port = -1
		assert.ErrorContains(t, c.validate(), "BACKOFFICE_DB_PORT")
	})
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}
