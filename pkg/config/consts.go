package config

const (
	EnvPrefix = "STOREFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
