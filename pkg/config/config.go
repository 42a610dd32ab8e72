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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Engine       EngineConfig
	Cron         CronConfig
	SignupLimit  SignupRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Engine.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEALPREP_APP_ENV" required:"true"`
	Port         string `envconfig:"MEALPREP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEALPREP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEALPREP_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"MEALPREP_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MEALPREP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MEALPREP_DB_DSN"`
	Driver string `envconfig:"MEALPREP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MEALPREP_DB_HOST"`
	Port     int    `envconfig:"MEALPREP_DB_PORT" default:"5432"`
	User     string `envconfig:"MEALPREP_DB_USER"`
	Password string `envconfig:"MEALPREP_DB_PASSWORD"`
	Name     string `envconfig:"MEALPREP_DB_NAME"`
	SSLMode  string `envconfig:"MEALPREP_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MEALPREP_SQLITE_PATH" default:"mealprep.db"`

	MaxOpenConns    int           `envconfig:"MEALPREP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEALPREP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEALPREP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEALPREP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"MEALPREP_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEALPREP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEALPREP_REDIS_ADDR"`
	Password     string        `envconfig:"MEALPREP_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEALPREP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEALPREP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEALPREP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEALPREP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEALPREP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEALPREP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEALPREP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEALPREP_AUTO_MIGRATE" default:"false"`
}

// EngineConfig tunes the subscription engine.
type EngineConfig struct {
	PriceDecimalPlaces int32         `envconfig:"MEALPREP_PRICE_DECIMAL_PLACES" default:"2"`
	DefaultPauseDays   int           `envconfig:"MEALPREP_DEFAULT_PAUSE_DAYS" default:"3"`
	Timezone           string        `envconfig:"MEALPREP_TIMEZONE" default:"Asia/Kuwait"`
	LockTTL            time.Duration `envconfig:"MEALPREP_SUBSCRIBER_LOCK_TTL" default:"10s"`
	LockWait           time.Duration `envconfig:"MEALPREP_SUBSCRIBER_LOCK_WAIT" default:"3s"`
}

// Location resolves the business timezone used to decide what "today" is.
func (e EngineConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(e.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

// SignupRateLimitConfig throttles public signups per client IP and per phone.
type SignupRateLimitConfig struct {
	Window     time.Duration `envconfig:"MEALPREP_SIGNUP_RATE_WINDOW" default:"1h"`
	IPLimit    int           `envconfig:"MEALPREP_SIGNUP_RATE_IP_LIMIT" default:"20"`
	PhoneLimit int           `envconfig:"MEALPREP_SIGNUP_RATE_PHONE_LIMIT" default:"3"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"MEALPREP_CRON_INTERVAL" default:"1h"`
	LockTTL    time.Duration `envconfig:"MEALPREP_CRON_LOCK_TTL" default:"55m"`
	JobTimeout time.Duration `envconfig:"MEALPREP_CRON_JOB_TIMEOUT" default:"10m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
