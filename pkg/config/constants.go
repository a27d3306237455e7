package config

const (
	EnvPrefix = "MOMENTS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv  = "MOMENTS_APP_ENV"
	EnvPort    = "MOMENTS_APP_PORT"
	EnvLogLvl  = "MOMENTS_LOG_LEVEL"
	EnvLogFmt  = "MOMENTS_LOG_FORMAT"
	EnvBaseURL = "MOMENTS_PUBLIC_BASE_URL"

	EnvDBDSN      = "MOMENTS_DB_DSN"
	EnvDBDriver   = "MOMENTS_DB_DRIVER"
	EnvDBHost     = "MOMENTS_DB_HOST"
	EnvDBPort     = "MOMENTS_DB_PORT"
	EnvDBUser     = "MOMENTS_DB_USER"
	EnvDBPassword = "MOMENTS_DB_PASSWORD"
	EnvDBName     = "MOMENTS_DB_NAME"
	EnvDBSSLMode  = "MOMENTS_DB_SSLMODE"

	EnvRedisURL = "MOMENTS_REDIS_URL"

	EnvJWTSecret = "MOMENTS_JWT_SECRET"
	EnvJWTIssuer = "MOMENTS_JWT_ISSUER"

	EnvAdminUsername     = "MOMENTS_ADMIN_USERNAME"
	EnvAdminPasswordHash = "MOMENTS_ADMIN_PASSWORD_HASH"
	EnvAdminSessionTTL   = "MOMENTS_ADMIN_SESSION_TTL"

	EnvStorageDriver   = "MOMENTS_STORAGE_DRIVER"
	EnvMaxUploadMB     = "MOMENTS_MAX_UPLOAD_MB"
	EnvReadURLExpiry   = "MOMENTS_STORAGE_READ_URL_EXPIRY"
	EnvAccessMode      = "MOMENTS_STORAGE_ACCESS_MODE"
	EnvGCPProjectID    = "MOMENTS_GCP_PROJECT_ID"
	EnvGCSBucket       = "MOMENTS_GCS_BUCKET_NAME"
	EnvS3Bucket        = "MOMENTS_S3_BUCKET"
	EnvS3Region        = "MOMENTS_S3_REGION"
	EnvS3Endpoint      = "MOMENTS_S3_ENDPOINT"
	EnvLocalDir        = "MOMENTS_LOCAL_STORAGE_DIR"
	EnvSeedDemoData    = "MOMENTS_SEED_DEMO_DATA"
	EnvInMemoryStore   = "MOMENTS_IN_MEMORY_STORE"
	EnvAutoMigrate     = "MOMENTS_AUTO_MIGRATE"
	EnvCORSOrigins     = "MOMENTS_CORS_ALLOWED_ORIGINS"
	EnvCronInterval    = "MOMENTS_CRON_INTERVAL"
	EnvCronLockTTL     = "MOMENTS_CRON_LOCK_TTL"
	EnvUploadRateLimit = "MOMENTS_RATE_LIMIT_UPLOAD_REQUESTS"
)

const (
	StorageDriverGCS   = "gcs"
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"

	AccessModePublic = "public"
	AccessModeSigned = "signed"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)
