package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  mode: release
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: bookstore
  password: secret
  dbname: bookstore
  sslmode: require
redis:
  enabled: true
  host: cache.internal
  detail_ttl: 30s
log:
  level: debug
  format: json
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=db.internal port=5432 user=bookstore password=secret dbname=bookstore sslmode=require", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Second, cfg.Redis.DetailTTL)
	assert.Equal(t, "json", cfg.Log.Format)

	// 未出现在文件中的字段取默认值
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.ConsecutiveFailures)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
  password: from-file
`)
	t.Setenv("BOOKSTORE_DATABASE_PASSWORD", "from-env")
	t.Setenv("BOOKSTORE_SERVER_PORT", "8181")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestLoad_WithoutFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/bookstore?charset=utf8mb4&parseTime=true&loc=Local", cfg.Database.DSN())
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOOKSTORE_DATABASE_DRIVER=memory\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BOOKSTORE_DATABASE_DRIVER") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"端口越界", "server:\n  port: 70000\n"},
		{"未知运行模式", "server:\n  mode: staging\n"},
		{"未知驱动", "database:\n  driver: oracle\n"},
		{"未知日志级别", "log:\n  level: verbose\n"},
		{"采样率越界", "tracing:\n  sample_ratio: 1.5\n"},
		{"熔断阈值为0", "breaker:\n  enabled: true\n  consecutive_failures: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	mysql := DatabaseConfig{
		Driver: DriverMySQL, User: "u", Password: "p", Host: "h", Port: 3306,
		DBName: "d", Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", mysql.DSN())

	sqlite := DatabaseConfig{Driver: DriverSQLite, Path: "file::memory:?cache=shared"}
	assert.Equal(t, "file::memory:?cache=shared", sqlite.DSN())
}

// chdir 切换工作目录并在测试结束时恢复（等价于Go 1.24的t.Chdir）
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
