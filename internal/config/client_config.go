package config

import "path/filepath"

// ClientConfig configures recordsctl and any other client of the identity API.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetTokenStorePath() string
}

type Client struct {
	EnvVars
}

var _ ClientConfig = Client{}

func NewClient() ClientConfig {
	return Client{}
}

func (Client) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:5000")
}

// GetTokenStorePath is where the durable token store lives. It defaults to a file in the
// data folder so sessions survive restarts of the CLI.
func (c Client) GetTokenStorePath() string {
	return GetEnv("TOKEN_STORE", filepath.Join(c.GetDataFolder(), "session.json"))
}
