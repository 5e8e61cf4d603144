package config

// Header constants.
const (
	HEADER_KEY_X_USER_ID = "X-User-Id"
)

// Environment keys.
const (
	ENV_KEY_APP_ENV   = "APP_ENV"
	ENV_KEY_PORT      = "PORT"
	ENV_KEY_LOG_LEVEL = "LOG_LEVEL"

	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"

	ENV_KEY_STORAGE_PROVIDER  = "STORAGE_PROVIDER"
	ENV_KEY_MINIO_ENDPOINT    = "MINIO_ENDPOINT"
	ENV_KEY_MINIO_ACCESS_KEY  = "MINIO_ACCESS_KEY"
	ENV_KEY_MINIO_SECRET_KEY  = "MINIO_SECRET_KEY"
	ENV_KEY_MINIO_BUCKET      = "MINIO_BUCKET"
	ENV_KEY_MINIO_USE_SSL     = "MINIO_USE_SSL"
	ENV_KEY_S3_BUCKET         = "S3_BUCKET"
	ENV_KEY_S3_PUBLIC_BASEURL = "S3_PUBLIC_BASEURL"

	ENV_KEY_REDIS_HOST         = "REDIS_HOST"
	ENV_KEY_REDIS_PORT         = "REDIS_PORT"
	ENV_KEY_REDIS_PASSWORD     = "REDIS_PASSWORD"
	ENV_KEY_WORKER_CONCURRENCY = "WORKER_CONCURRENCY"

	ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH = "FIREBASE_SERVICE_ACCOUNT_KEY_PATH"

	ENV_KEY_OTEL_SERVICE_NAME           = "OTEL_SERVICE_NAME"
	ENV_KEY_OTEL_EXPORTER_OTLP_ENDPOINT = "OTEL_EXPORTER_OTLP_ENDPOINT"

	ENV_KEY_UPLOAD_RATE_LIMIT = "UPLOAD_RATE_LIMIT"
)

// Storage providers.
const (
	STORAGE_PROVIDER_MINIO = "minio"
	STORAGE_PROVIDER_S3    = "s3"
)

// Upload and presign limits.
const (
	PRESIGN_URL_EXPIRE_SECONDS = 3600
	MAX_FILE_SIZE              = 50 << 20
	MAX_SCREENSHOTS            = 5
	DEFAULT_UPLOAD_RATE_LIMIT  = 5
)

// Multipart field names for application asset slots.
const (
	SLOT_ICON        = "icon"
	SLOT_BINARY      = "appFile"
	SLOT_SCREENSHOTS = "screenshots"
	SLOT_PROFILE     = "file"
)

// Queue task types.
const (
	TASK_CLEANUP_ORPHANS = "cleanup:orphans"
)

type ContextKey uint

const (
	_ ContextKey = iota
	CTX_KEY_USER_ID
)
