package config

const (
	EnvPrefix = "NOWAROUND"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSearchPageSize = 20
	MaxSearchPageSize     = 100

	defaultSQLiteDSN = "file:nowaround.db?_foreign_keys=on"
)

const (
	EnvAppEnv   = "NOWAROUND_APP_ENV"
	EnvPort     = "NOWAROUND_APP_PORT"
	EnvLogLevel = "NOWAROUND_LOG_LEVEL"

	EnvDBDSN  = "NOWAROUND_DB_DSN"
	EnvDBHost = "NOWAROUND_DB_HOST"
	EnvDBUser = "NOWAROUND_DB_USER"
	EnvDBName = "NOWAROUND_DB_NAME"

	EnvRedisURL = "NOWAROUND_REDIS_URL"

	EnvFirebaseProjectID = "NOWAROUND_FIREBASE_PROJECT_ID"
	EnvGoogleMapsAPIKey  = "NOWAROUND_GOOGLE_MAPS_API_KEY"
	EnvGCSBucket         = "NOWAROUND_GCS_BUCKET_NAME"
	EnvSendgridAPIKey    = "NOWAROUND_SENDGRID_API_KEY"
	EnvSendgridFrom      = "NOWAROUND_SENDGRID_FROM_EMAIL"
	EnvSearchPageSize    = "NOWAROUND_SEARCH_PAGE_SIZE"
	EnvUseSQLite         = "NOWAROUND_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
