package database

import (
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/config"
)

// FromAppConfig adapts the application configuration to database
// configuration. CE_DB_* variables read by DefaultConfig win over the file.
func FromAppConfig(conf *config.Config) *Config {
	dbConf := DefaultConfig()
	src := conf.Database

	if src.Driver != "" && configEnv("CE_DB_DRIVER") == "" {
		dbConf.Driver = src.Driver
	}
	if dbConf.Host == "" {
		dbConf.Host = src.Host
	}
	if src.Port > 0 && configEnv("CE_DB_PORT") == "" {
		dbConf.Port = src.Port
	}
	if dbConf.Username == "" {
		dbConf.Username = src.Username
	}
	if dbConf.Password == "" {
		dbConf.Password = src.Password
	}
	if dbConf.Database == "" {
		dbConf.Database = src.Database
	}

	if src.SSLMode != "" {
		dbConf.SSLMode = src.SSLMode
	}
	if src.MaxOpenConns > 0 {
		dbConf.MaxOpenConns = src.MaxOpenConns
	}
	if src.MaxIdleConns > 0 {
		dbConf.MaxIdleConns = src.MaxIdleConns
	}
	if src.ConnMaxLifetime > 0 {
		dbConf.ConnMaxLifetime = src.ConnMaxLifetime
	}
	if src.ConnMaxIdleTime > 0 {
		dbConf.ConnMaxIdleTime = src.ConnMaxIdleTime
	}
	if src.QueryTimeout > 0 {
		dbConf.QueryTimeout = src.QueryTimeout
	}
	if src.RetryAttempts > 0 {
		dbConf.RetryAttempts = src.RetryAttempts
	}
	if src.RetryDelay > 0 {
		dbConf.RetryDelay = src.RetryDelay
	}
	if src.BusyTimeout > 0 {
		dbConf.BusyTimeout = src.BusyTimeout
	}
	if conf.Logger.Level != "" {
		dbConf.LogLevel = conf.Logger.Level
	}
	if src.LogLevel != "" {
		dbConf.LogLevel = src.LogLevel
	}

	return dbConf
}

// RetryConfigFromApp builds the retry policy from the transaction section
func RetryConfigFromApp(conf *config.Config) RetryConfig {
	retry := DefaultRetryConfig()
	if conf.Transaction.MaxRetries > 0 {
		retry.MaxRetries = conf.Transaction.MaxRetries
	}
	if conf.Transaction.RetryInterval > 0 {
		retry.RetryInterval = conf.Transaction.RetryInterval
	}
	if conf.Transaction.MaxRetryInterval > 0 {
		retry.MaxInterval = conf.Transaction.MaxRetryInterval
	}
	return retry
}
