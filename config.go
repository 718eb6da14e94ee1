package dbmodel

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Timeout bounds connecting, reading and writing on every connection.
const Timeout = 10 * time.Second

// DefaultConnection is the config name used when a Definition names none.
const DefaultConnection = "default"

const defaultCharset = "utf8mb4"

// Config describes one named database.
type Config struct {
	Driver  string `mapstructure:"driver"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DBName  string `mapstructure:"dbname"`
	User    string `mapstructure:"user"`
	Passwd  string `mapstructure:"passwd"`
	Charset string `mapstructure:"charset"`
}

// DriverName maps the configured driver to the name registered with database/sql.
func (c Config) DriverName() string {
	switch strings.ToLower(c.Driver) {
	case "mysql":
		return "mysql"
	case "pgsql", "postgres", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return ""
	}
}

func (c Config) Validate() error {
	if c.DriverName() == "" {
		return newError(CodeDriverUnsupported, nil, "database driver %q is not supported", c.Driver)
	}

	if c.DriverName() != "sqlite3" && c.Host == "" {
		return newError(CodeConfigMissing, nil, "database host is not configured")
	}

	if c.DBName == "" {
		return newError(CodeConfigMissing, nil, "database name is not configured")
	}

	return nil
}

func (c Config) charset() string {
	if c.Charset == "" {
		return defaultCharset
	}
	return c.Charset
}

// DSN builds the driver connection string. Validate first.
func (c Config) DSN() string {
	switch c.DriverName() {
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Passwd
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.port()))
		cfg.DBName = c.DBName
		cfg.Timeout = Timeout
		cfg.ReadTimeout = Timeout
		cfg.WriteTimeout = Timeout
		cfg.InterpolateParams = false
		cfg.Params = map[string]string{"charset": c.charset()}
		return cfg.FormatDSN()

	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s client_encoding=%s connect_timeout=%d sslmode=disable",
			c.Host, c.port(), c.User, c.Passwd, c.DBName, pgEncoding(c.charset()), int(Timeout.Seconds()))

	case "sqlite3":
		return fmt.Sprintf("%s?_busy_timeout=%d", c.DBName, Timeout.Milliseconds())
	}

	return ""
}

func (c Config) port() int {
	if c.Port > 0 {
		return c.Port
	}
	switch c.DriverName() {
	case "postgres":
		return 5432
	default:
		return 3306
	}
}

func pgEncoding(charset string) string {
	if strings.HasPrefix(strings.ToLower(charset), "utf8") {
		return "UTF8"
	}
	return charset
}

// LoadConfigs reads the `database` section of the file at path into configs
// keyed by name. .env and .env.local are loaded first when present, and any
// key can be overridden from the environment, e.g. DBMODEL_DATABASE_DEFAULT_HOST.
func LoadConfigs(path string) (map[string]Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("DBMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, newError(CodeConfigMissing, err, "cannot read database config %s", path)
	}

	names := v.GetStringMap("database")
	if len(names) == 0 {
		return nil, newError(CodeConfigMissing, nil, "no database section in %s", path)
	}

	configs := make(map[string]Config, len(names))
	for name := range names {
		key := "database." + name

		// AutomaticEnv only applies to explicit Get calls, so read field by field.
		cfg := Config{
			Driver:  v.GetString(key + ".driver"),
			Host:    v.GetString(key + ".host"),
			Port:    v.GetInt(key + ".port"),
			DBName:  v.GetString(key + ".dbname"),
			User:    v.GetString(key + ".user"),
			Passwd:  v.GetString(key + ".passwd"),
			Charset: v.GetString(key + ".charset"),
		}

		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "database config %q", name)
		}

		configs[name] = cfg
	}

	return configs, nil
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := os.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}
}
