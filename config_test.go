package dbmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
database:
  default:
    driver: mysql
    host: 127.0.0.1
    dbname: shop
    user: root
    passwd: secret
  report:
    driver: pgsql
    host: pg.local
    port: 6432
    dbname: report
  cache:
    driver: sqlite
    dbname: cache.db
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "database.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigs(t *testing.T) {
	configs, err := LoadConfigs(writeConfig(t, testConfig))
	require.NoError(t, err)
	require.Len(t, configs, 3)

	def := configs["default"]
	assert.Equal(t, "mysql", def.DriverName())
	assert.Equal(t, "shop", def.DBName)
	assert.Equal(t, 3306, def.port())

	assert.Equal(t, "postgres", configs["report"].DriverName())
	assert.Equal(t, 6432, configs["report"].Port)
	assert.Equal(t, "sqlite3", configs["cache"].DriverName())
}

func TestLoadConfigs_EnvOverride(t *testing.T) {
	t.Setenv("DBMODEL_DATABASE_DEFAULT_HOST", "db.internal")

	configs, err := LoadConfigs(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", configs["default"].Host)
}

func TestLoadConfigs_Errors(t *testing.T) {
	_, err := LoadConfigs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, CodeConfigMissing, CodeOf(err))

	_, err = LoadConfigs(writeConfig(t, "app:\n  name: x\n"))
	assert.Equal(t, CodeConfigMissing, CodeOf(err))

	_, err = LoadConfigs(writeConfig(t, "database:\n  default:\n    driver: oracle\n    host: x\n    dbname: y\n"))
	assert.Equal(t, CodeDriverUnsupported, CodeOf(err))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Code
	}{
		{"ok", Config{Driver: "mysql", Host: "h", DBName: "d"}, 0},
		{"sqlite without host", Config{Driver: "sqlite3", DBName: "x.db"}, 0},
		{"unknown driver", Config{Driver: "mssql", Host: "h", DBName: "d"}, CodeDriverUnsupported},
		{"no host", Config{Driver: "postgres", DBName: "d"}, CodeConfigMissing},
		{"no dbname", Config{Driver: "mysql", Host: "h"}, CodeConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.cfg.Validate()))
		})
	}
}

func TestConfigDSN(t *testing.T) {
	mysqlDSN := Config{Driver: "mysql", Host: "db", DBName: "shop", User: "u", Passwd: "p"}.DSN()
	assert.Contains(t, mysqlDSN, "u:p@tcp(db:3306)/shop?")
	assert.Contains(t, mysqlDSN, "charset=utf8mb4")
	assert.Contains(t, mysqlDSN, "timeout=10s")

	pgDSN := Config{Driver: "pgsql", Host: "pg", DBName: "r", User: "u"}.DSN()
	assert.Contains(t, pgDSN, "host=pg port=5432")
	assert.Contains(t, pgDSN, "client_encoding=UTF8")
	assert.Contains(t, pgDSN, "connect_timeout=10")

	assert.Equal(t, "app.db?_busy_timeout=10000", Config{Driver: "sqlite", DBName: "app.db"}.DSN())
}
