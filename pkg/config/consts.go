package config

const (
	EnvPrefix = "ecom"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ECOM_DB_DSN"
	EnvDBHost = "ECOM_DB_HOST"
	EnvDBUser = "ECOM_DB_USER"
	EnvDBName = "ECOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
