package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Auth         AuthConfig
	Payments     PaymentsConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECOM_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECOM_DB_DSN"`
	Driver string `envconfig:"ECOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOM_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOM_DB_USER"`
	LegacyPassword string `envconfig:"ECOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// LockTimeout bounds how long a transaction waits on a product row
	// lock before failing with a transient error.
	LockTimeout time.Duration `envconfig:"ECOM_DB_LOCK_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ECOM_REDIS_ADDR"`
	Password     string        `envconfig:"ECOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ECOM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ECOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ECOM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ECOM_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECOM_ARGON_KEY_LEN" default:"32"`
}

type AuthConfig struct {
	// AdminEmails are granted the ADMIN role at registration time.
	AdminEmails []string `envconfig:"ECOM_ADMIN_EMAILS"`
}

func (a AuthConfig) IsAdminEmail(email string) bool {
	for _, candidate := range a.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

type PaymentsConfig struct {
	// WebhookSecret authenticates the payment collaborator's
	// confirm-payment callbacks.
	WebhookSecret string `envconfig:"ECOM_PAYMENTS_WEBHOOK_SECRET"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ECOM_CORS_ALLOWED_ORIGINS" default:"*"`
	MaxAgeSeconds  int      `envconfig:"ECOM_CORS_MAX_AGE_SECONDS" default:"300"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ECOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ECOM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
