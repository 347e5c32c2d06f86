package config

import (
	"strings"
	"time"
)

type SecurityConfig interface {
	GetMaxRequestBodyBytes() int64
	GetShutdownTimeout() time.Duration
	GetSessionPurgeSchedule() string
	GetTrustedProxies() []string
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetMaxRequestBodyBytes() int64 {
	return 1 << 20 // 1 MiB
}

func (Security) GetShutdownTimeout() time.Duration {
	return 5 * time.Second
}

// GetSessionPurgeSchedule is a cron spec with a seconds field, or a descriptor such as "@hourly".
func (Security) GetSessionPurgeSchedule() string {
	return GetEnv("SESSION_PURGE_SCHEDULE", "0 0 * * * *")
}

// GetTrustedProxies lists the proxy addresses (IPs or CIDRs) whose X-Forwarded-For header is
// believed. Empty means the header is ignored.
func (Security) GetTrustedProxies() []string {
	var proxies []string
	for _, p := range strings.Split(GetEnv("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
