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
	Firebase     FirebaseConfig
	GoogleMaps   GoogleMapsConfig
	GCS          GCSConfig
	Sendgrid     SendgridConfig
	Search       SearchConfig
	Statistics   StatisticsConfig
	Cron         CronConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	cfg.Search.normalize()
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NOWAROUND_APP_ENV" required:"true"`
	Port         string `envconfig:"NOWAROUND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOWAROUND_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"NOWAROUND_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"NOWAROUND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NOWAROUND_DB_DSN"`
	Driver string `envconfig:"NOWAROUND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NOWAROUND_DB_HOST"`
	LegacyPort     int    `envconfig:"NOWAROUND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NOWAROUND_DB_USER"`
	LegacyPassword string `envconfig:"NOWAROUND_DB_PASSWORD"`
	LegacyName     string `envconfig:"NOWAROUND_DB_NAME"`
	LegacySSLMode  string `envconfig:"NOWAROUND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOWAROUND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOWAROUND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOWAROUND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOWAROUND_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"NOWAROUND_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOWAROUND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NOWAROUND_REDIS_ADDR"`
	Password     string        `envconfig:"NOWAROUND_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOWAROUND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOWAROUND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOWAROUND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOWAROUND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOWAROUND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOWAROUND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FirebaseConfig configures the identity provider.
type FirebaseConfig struct {
	ProjectID       string        `envconfig:"NOWAROUND_FIREBASE_PROJECT_ID" required:"true"`
	CredentialsJSON string        `envconfig:"NOWAROUND_FIREBASE_CREDENTIALS_JSON"`
	CredentialsFile string        `envconfig:"NOWAROUND_FIREBASE_CREDENTIALS_FILE"`
	Timeout         time.Duration `envconfig:"NOWAROUND_FIREBASE_TIMEOUT" default:"10s"`
}

type GoogleMapsConfig struct {
	APIKey       string        `envconfig:"NOWAROUND_GOOGLE_MAPS_API_KEY" required:"true"`
	BaseURL      string        `envconfig:"NOWAROUND_GOOGLE_MAPS_BASE_URL"`
	GeocodeTTL   time.Duration `envconfig:"NOWAROUND_GEOCODE_CACHE_TTL" default:"168h"`
	LanguageCode string        `envconfig:"NOWAROUND_GOOGLE_MAPS_LANGUAGE" default:"sk"`
	RegionCode   string        `envconfig:"NOWAROUND_GOOGLE_MAPS_REGION" default:"sk"`
}

type GCSConfig struct {
	BucketName      string `envconfig:"NOWAROUND_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL   string `envconfig:"NOWAROUND_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	CredentialsJSON string `envconfig:"NOWAROUND_GCS_CREDENTIALS_JSON"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"NOWAROUND_SENDGRID_API_KEY" required:"true"`
	DefaultFrom string `envconfig:"NOWAROUND_SENDGRID_FROM_EMAIL" required:"true"`
	FromName    string `envconfig:"NOWAROUND_SENDGRID_FROM_NAME" default:"NowAround"`
}

// SearchConfig controls the discovery listing.
type SearchConfig struct {
	PageSize int `envconfig:"NOWAROUND_SEARCH_PAGE_SIZE" default:"20"`
}

func (s *SearchConfig) normalize() {
	if s.PageSize <= 0 {
		s.PageSize = DefaultSearchPageSize
	}
	if s.PageSize > MaxSearchPageSize {
		s.PageSize = MaxSearchPageSize
	}
}

type StatisticsConfig struct {
	MonthLockTTL time.Duration `envconfig:"NOWAROUND_STATISTICS_MONTH_LOCK_TTL" default:"30s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"NOWAROUND_CRON_INTERVAL" default:"24h"`
}

type PasswordConfig struct {
	TempPasswordLength int `envconfig:"NOWAROUND_TEMP_PASSWORD_LENGTH" default:"16"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NOWAROUND_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NOWAROUND_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
	}
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
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
