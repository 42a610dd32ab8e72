package config

const EnvPrefix = "MEALPREP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "MEALPREP_APP_ENV"
	EnvPort        = "MEALPREP_APP_PORT"
	EnvLogLevel    = "MEALPREP_LOG_LEVEL"
	EnvDBDSN       = "MEALPREP_DB_DSN"
	EnvDBHost      = "MEALPREP_DB_HOST"
	EnvDBUser      = "MEALPREP_DB_USER"
	EnvDBName      = "MEALPREP_DB_NAME"
	EnvDBPassword  = "MEALPREP_DB_PASSWORD"
	EnvRedisURL    = "MEALPREP_REDIS_URL"
	EnvUseSQLite   = "MEALPREP_USE_SQLITE"
	EnvTimezone    = "MEALPREP_TIMEZONE"
	EnvPriceDigits = "MEALPREP_PRICE_DECIMAL_PLACES"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
