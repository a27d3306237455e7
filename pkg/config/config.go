package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

const defaultSQLiteDSN = "file:moments.db?_foreign_keys=on"

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Admin         AdminConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	GCP           GCPConfig
	GCS           GCSConfig
	S3            S3Config
	Local         LocalStorageConfig
	Breaker       BreakerConfig
	Cron          CronConfig
	CORS          CORSConfig
}

// Load reads the process environment. Every cross-field problem is reported
// in one error so a misconfigured deploy can be fixed in a single pass.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	err := multierr.Combine(
		cfg.DB.ensureDSN(),
		cfg.Storage.validate(),
		cfg.checkStorageBackend(),
		positive(EnvCronInterval, cfg.Cron.Interval),
		positive(EnvCronLockTTL, cfg.Cron.LockTTL),
		positive(EnvAdminSessionTTL, cfg.Admin.SessionTTL),
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// checkStorageBackend requires the settings the selected driver cannot run without.
func (c *Config) checkStorageBackend() error {
	switch c.Storage.Driver {
	case StorageDriverGCS:
		if strings.TrimSpace(c.GCS.BucketName) == "" {
			return fmt.Errorf("%s is required for the gcs driver", EnvGCSBucket)
		}
	case StorageDriverS3:
		if strings.TrimSpace(c.S3.Bucket) == "" {
			return fmt.Errorf("%s is required for the s3 driver", EnvS3Bucket)
		}
	}
	return nil
}

func positive(env string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive (got %s)", env, d)
	}
	return nil
}

type AppConfig struct {
	Env           string `envconfig:"MOMENTS_APP_ENV" required:"true"`
	Port          string `envconfig:"MOMENTS_APP_PORT" required:"true"`
	LogLevel      string `envconfig:"MOMENTS_LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"MOMENTS_LOG_FORMAT" default:"json"`
	LogWarnStack  bool   `envconfig:"MOMENTS_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string `envconfig:"MOMENTS_PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MOMENTS_DB_DSN"`
	Driver string `envconfig:"MOMENTS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MOMENTS_DB_HOST"`
	LegacyPort     int    `envconfig:"MOMENTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MOMENTS_DB_USER"`
	LegacyPassword string `envconfig:"MOMENTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"MOMENTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"MOMENTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MOMENTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MOMENTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MOMENTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOMENTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this at warn. Zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"MOMENTS_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MOMENTS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MOMENTS_REDIS_ADDR"`
	Password     string        `envconfig:"MOMENTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MOMENTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MOMENTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOMENTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOMENTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOMENTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MOMENTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"MOMENTS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MOMENTS_JWT_ISSUER" default:"moments-gallery"`
}

// AdminConfig holds the single administrator identity. The password is only
// ever stored as an Argon2id hash.
type AdminConfig struct {
	Username     string        `envconfig:"MOMENTS_ADMIN_USERNAME" default:"admin"`
	PasswordHash string        `envconfig:"MOMENTS_ADMIN_PASSWORD_HASH" required:"true"`
	SessionTTL   time.Duration `envconfig:"MOMENTS_ADMIN_SESSION_TTL" default:"24h"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MOMENTS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MOMENTS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MOMENTS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MOMENTS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MOMENTS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MOMENTS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"MOMENTS_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MOMENTS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type RateLimitConfig struct {
	UploadRequests int           `envconfig:"MOMENTS_RATE_LIMIT_UPLOAD_REQUESTS" default:"30"`
	UploadWindow   time.Duration `envconfig:"MOMENTS_RATE_LIMIT_UPLOAD_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"MOMENTS_AUTO_MIGRATE" default:"false"`
	SeedDemoData  bool `envconfig:"MOMENTS_SEED_DEMO_DATA" default:"false"`
	InMemoryStore bool `envconfig:"MOMENTS_IN_MEMORY_STORE" default:"false"`
}

type StorageConfig struct {
	Driver        string        `envconfig:"MOMENTS_STORAGE_DRIVER" default:"local"`
	MaxUploadMB   int           `envconfig:"MOMENTS_MAX_UPLOAD_MB" default:"50"`
	ReadURLExpiry time.Duration `envconfig:"MOMENTS_STORAGE_READ_URL_EXPIRY" default:"1h"`
	AccessMode    string        `envconfig:"MOMENTS_STORAGE_ACCESS_MODE" default:"public"`
}

// MaxUploadBytes converts the configured megabyte limit into bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 0
	}
	return int64(s.MaxUploadMB) * 1024 * 1024
}

// Signed reports whether read URLs must be signed per request.
func (s StorageConfig) Signed() bool {
	return strings.EqualFold(s.AccessMode, AccessModeSigned)
}

func (s *StorageConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case StorageDriverGCS, StorageDriverS3, StorageDriverLocal:
	default:
		return fmt.Errorf("%s must be one of gcs, s3, local (got %q)", EnvStorageDriver, s.Driver)
	}
	switch strings.ToLower(s.AccessMode) {
	case AccessModePublic, AccessModeSigned:
	default:
		return fmt.Errorf("%s must be public or signed (got %q)", EnvAccessMode, s.AccessMode)
	}
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MOMENTS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MOMENTS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MOMENTS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"MOMENTS_GCS_BUCKET_NAME"`
}

type S3Config struct {
	Bucket          string `envconfig:"MOMENTS_S3_BUCKET"`
	Region          string `envconfig:"MOMENTS_S3_REGION" default:"auto"`
	Endpoint        string `envconfig:"MOMENTS_S3_ENDPOINT"`
	AccessKeyID     string `envconfig:"MOMENTS_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"MOMENTS_S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `envconfig:"MOMENTS_S3_PUBLIC_BASE_URL"`
	UsePathStyle    bool   `envconfig:"MOMENTS_S3_USE_PATH_STYLE" default:"false"`
}

type LocalStorageConfig struct {
	Dir           string `envconfig:"MOMENTS_LOCAL_STORAGE_DIR" default:"./data/uploads"`
	PublicBaseURL string `envconfig:"MOMENTS_LOCAL_PUBLIC_BASE_URL" default:"/uploads"`
}

type BreakerConfig struct {
	MaxConsecutiveFailures uint32        `envconfig:"MOMENTS_STORAGE_BREAKER_MAX_FAILURES" default:"5"`
	OpenTimeout            time.Duration `envconfig:"MOMENTS_STORAGE_BREAKER_TIMEOUT" default:"30s"`
	Interval               time.Duration `envconfig:"MOMENTS_STORAGE_BREAKER_INTERVAL" default:"1m"`
}

type CronConfig struct {
	Interval      time.Duration `envconfig:"MOMENTS_CRON_INTERVAL" default:"15m"`
	PendingMaxAge time.Duration `envconfig:"MOMENTS_CRON_PENDING_MAX_AGE" default:"48h"`
	LockTTL       time.Duration `envconfig:"MOMENTS_CRON_LOCK_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MOMENTS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// ensureDSN fills DSN from the discrete MOMENTS_DB_* parts when it is unset.
func (db *DBConfig) ensureDSN() error {
	switch {
	case db.DSN != "":
		return nil
	case db.IsSQLite():
		db.DSN = defaultSQLiteDSN
		return nil
	}

	var missing []string
	for env, v := range map[string]string{EnvDBHost: db.LegacyHost, EnvDBUser: db.LegacyUser, EnvDBName: db.LegacyName} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.LegacyUser),
		Host:   net.JoinHostPort(db.LegacyHost, strconv.Itoa(db.LegacyPort)),
		Path:   db.LegacyName,
	}
	if db.LegacyPassword != "" {
		u.User = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	if db.LegacySSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.LegacySSLMode}}.Encode()
	}
	db.DSN = u.String()
	return nil
}
