package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	portEnvVar           = "PORT"
	appNameVar           = "APP_NAME"
	folderEnvVar         = "FOLDER"
	recordsBackendURLVar = "RECORDS_BACKEND_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "5000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Hospital Records")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetRecordsBackendURL is the base URL of the external patient-records service that
// role-gated domain routes are forwarded to. Empty means no backend is configured.
func (EnvVars) GetRecordsBackendURL() string {
	return GetEnv(recordsBackendURLVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
