package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MODELBAY_DB_DSN"
	EnvDBHost = "MODELBAY_DB_HOST"
	EnvDBUser = "MODELBAY_DB_USER"
	EnvDBName = "MODELBAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
