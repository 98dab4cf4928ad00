package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Wallet      WalletConfig      `mapstructure:"wallet"`
	Envelope    EnvelopeConfig    `mapstructure:"envelope"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Audio       AudioConfig       `mapstructure:"audio"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
	CORSOrigins       []string      `mapstructure:"corsOrigins"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"` // name, or file path / :memory: for sqlite
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`  // seconds
	BusyTimeout     time.Duration `mapstructure:"busyTimeout"` // seconds, sqlite only
	LogLevel        string        `mapstructure:"logLevel"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // json or console
	Output     string `mapstructure:"output"` // stdout, stderr or a file path
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// TransactionConfig tunes how conflicting writes are serialized and retried
type TransactionConfig struct {
	ConcurrencyLevel int           `mapstructure:"concurrencyLevel"` // claim serializer stripes
	MaxRetries       int           `mapstructure:"maxRetries"`
	RetryInterval    time.Duration `mapstructure:"retryIntervalMs"`    // milliseconds
	MaxRetryInterval time.Duration `mapstructure:"maxRetryIntervalMs"` // milliseconds
}

// WalletConfig contains wallet defaults
type WalletConfig struct {
	StartingBalance  string `mapstructure:"startingBalance"` // decimal yuan, e.g. "100.00"
	TransactionLimit int    `mapstructure:"transactionLimit"`
}

// EnvelopeConfig contains envelope game settings
type EnvelopeConfig struct {
	Lifetime       time.Duration `mapstructure:"lifetime"` // seconds
	ListLimit      int           `mapstructure:"listLimit"`
	PasswordLength int           `mapstructure:"passwordLength"`
	SweepInterval  time.Duration `mapstructure:"sweepInterval"` // seconds, 0 disables the background sweeper
	SweepBatchSize int           `mapstructure:"sweepBatchSize"`
	CorpusPath     string        `mapstructure:"corpusPath"` // empty uses the embedded corpus
	SweepLockPath  string        `mapstructure:"sweepLockPath"`
}

// AuthConfig contains credential and session token settings
type AuthConfig struct {
	RequireToken   bool          `mapstructure:"requireToken"`
	TokenSecret    string        `mapstructure:"tokenSecret"`
	TokenTTL       time.Duration `mapstructure:"tokenTTL"`       // seconds
	CredentialMode string        `mapstructure:"credentialMode"` // plaintext or bcrypt
	BcryptCost     int           `mapstructure:"bcryptCost"`
}

// AudioConfig contains tone playback settings
type AudioConfig struct {
	Frequency    float64 `mapstructure:"frequency"` // Hz
	Gain         float64 `mapstructure:"gain"`
	RampMs       int     `mapstructure:"rampMs"`
	SampleRate   int     `mapstructure:"sampleRate"`
	UnlockPhrase string  `mapstructure:"unlockPhrase"`
}
