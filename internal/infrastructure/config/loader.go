package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "CE"

// ErrNoDotEnv is returned by loadDotEnvFile when no .env file exists in the search paths
var ErrNoDotEnv = errors.New("no .env file found in search paths")

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration for the environment named by CE_ENV
func LoadConfig() (*Config, error) {
	// .env is optional, real environment variables win over it
	if err := loadDotEnvFile(); err != nil && !errors.Is(err, ErrNoDotEnv) {
		return nil, err
	}

	env := getEnvironment()

	v := newViper()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Defaults plus environment are enough to run
	}

	return decode(v, env)
}

// LoadFile loads configuration from an explicit YAML file
func LoadFile(path string) (*Config, error) {
	if err := loadDotEnvFile(); err != nil && !errors.Is(err, ErrNoDotEnv) {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	env := v.GetString("environment")
	if env == "" {
		env = getEnvironment()
	}
	return decode(v, env)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper, env string) (*Config, error) {
	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = strings.ToLower(env)
	processDurations(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found in DotEnvPaths
func loadDotEnvFile() error {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load %s: %w", path, err)
		}
		return nil
	}
	return ErrNoDotEnv
}

// setDefaults sets default values for every section
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds
	v.SetDefault("server.corsOrigins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.database", "envelope.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1)  // seconds
	v.SetDefault("database.busyTimeout", 5) // seconds
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("transaction.concurrencyLevel", 16)
	v.SetDefault("transaction.maxRetries", 5)
	v.SetDefault("transaction.retryIntervalMs", 20)
	v.SetDefault("transaction.maxRetryIntervalMs", 1000)

	v.SetDefault("wallet.startingBalance", "100.00")
	v.SetDefault("wallet.transactionLimit", 50)

	v.SetDefault("envelope.lifetime", 86400) // seconds
	v.SetDefault("envelope.listLimit", 20)
	v.SetDefault("envelope.passwordLength", 4)
	v.SetDefault("envelope.sweepInterval", 60) // seconds
	v.SetDefault("envelope.sweepBatchSize", 100)
	v.SetDefault("envelope.corpusPath", "")
	v.SetDefault("envelope.sweepLockPath", "envelope-sweep.lock")

	v.SetDefault("auth.requireToken", false)
	v.SetDefault("auth.tokenSecret", "")
	v.SetDefault("auth.tokenTTL", 86400) // seconds
	v.SetDefault("auth.credentialMode", "plaintext")
	v.SetDefault("auth.bcryptCost", 10)

	v.SetDefault("audio.frequency", 700.0)
	v.SetDefault("audio.gain", 0.5)
	v.SetDefault("audio.rampMs", 5)
	v.SetDefault("audio.sampleRate", 44100)
	v.SetDefault("audio.unlockPhrase", "")
}

// getEnvironment determines the environment from CE_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides maps the short variable names used in deployments onto config keys.
// Duration keys are read as integers so they go through processDurations like file values.
func processEnvOverrides(v *viper.Viper) {
	strs := map[string]string{
		"CE_DB_DRIVER":        "database.driver",
		"CE_DB_HOST":          "database.host",
		"CE_DB_USERNAME":      "database.username",
		"CE_DB_PASSWORD":      "database.password",
		"CE_DB_NAME":          "database.database",
		"CE_DB_SSL_MODE":      "database.sslMode",
		"CE_DB_LOG_LEVEL":     "database.logLevel",
		"CE_SERVER_HOST":      "server.host",
		"CE_LOGGER_LEVEL":     "logger.level",
		"CE_LOGGER_FORMAT":    "logger.format",
		"CE_AUTH_SECRET":      "auth.tokenSecret",
		"CE_AUTH_CREDENTIALS": "auth.credentialMode",
		"CE_CORPUS_PATH":      "envelope.corpusPath",
		"CE_UNLOCK_PHRASE":    "audio.unlockPhrase",
		"CE_STARTING_BALANCE": "wallet.startingBalance",
	}
	for name, key := range strs {
		if val := os.Getenv(name); val != "" {
			v.Set(key, val)
		}
	}

	ints := map[string]string{
		"CE_DB_PORT":                       "database.port",
		"CE_DB_MAX_OPEN_CONNS":             "database.maxOpenConns",
		"CE_DB_MAX_IDLE_CONNS":             "database.maxIdleConns",
		"CE_DB_CONN_MAX_LIFETIME_MINUTES":  "database.connMaxLifetime",
		"CE_DB_CONN_MAX_IDLE_TIME_MINUTES": "database.connMaxIdleTime",
		"CE_DB_QUERY_TIMEOUT_SECONDS":      "database.queryTimeout",
		"CE_DB_RETRY_ATTEMPTS":             "database.retryAttempts",
		"CE_DB_RETRY_DELAY_SECONDS":        "database.retryDelay",
		"CE_DB_BUSY_TIMEOUT_SECONDS":       "database.busyTimeout",
		"CE_SERVER_PORT":                   "server.port",
		"CE_TRANSACTION_CONCURRENCY_LEVEL": "transaction.concurrencyLevel",
		"CE_TRANSACTION_MAX_RETRIES":       "transaction.maxRetries",
		"CE_ENVELOPE_LIFETIME_SECONDS":     "envelope.lifetime",
		"CE_ENVELOPE_SWEEP_SECONDS":        "envelope.sweepInterval",
		"CE_AUTH_TOKEN_TTL_SECONDS":        "auth.tokenTTL",
	}
	for name, key := range ints {
		if val, ok := getEnvInt(name); ok {
			v.Set(key, val)
		}
	}

	if val := os.Getenv("CE_AUTH_REQUIRE_TOKEN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			v.Set("auth.requireToken", b)
		}
	}
}

// getEnvInt reads an integer environment variable. Unset or malformed values report false.
func getEnvInt(name string) (int, bool) {
	valStr := os.Getenv(name)
	if valStr == "" {
		return 0, false
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, false
	}
	return val, true
}

// processDurations converts raw integers into durations using the unit each key documents
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
	config.Database.BusyTimeout = time.Duration(config.Database.BusyTimeout) * time.Second

	config.Transaction.RetryInterval = time.Duration(config.Transaction.RetryInterval) * time.Millisecond
	config.Transaction.MaxRetryInterval = time.Duration(config.Transaction.MaxRetryInterval) * time.Millisecond

	config.Envelope.Lifetime = time.Duration(config.Envelope.Lifetime) * time.Second
	config.Envelope.SweepInterval = time.Duration(config.Envelope.SweepInterval) * time.Second

	config.Auth.TokenTTL = time.Duration(config.Auth.TokenTTL) * time.Second
}
