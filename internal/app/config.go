package app

import (
	"strings"
	"time"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/envutil"
	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
)

const (
	SignalModeInProcess = "inprocess"
	SignalModeRedis     = "redis"
)

type Config struct {
	HTTPPort        string
	AllowOrigins    []string
	SignalMode      string
	LMSBaseURL      string
	ProviderTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	httpPort := envutil.GetEnv("PORT", "8080", log)
	origins := envutil.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)
	signalMode := strings.ToLower(envutil.GetEnv("SIGNAL_MODE", SignalModeInProcess, log))
	lmsBaseURL := envutil.GetEnv("LMS_BASE_URL", "", log)
	providerTimeoutMS := envutil.GetEnvAsInt("PROVIDER_TIMEOUT_MS", 2000, log)

	allowOrigins := make([]string, 0)
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			allowOrigins = append(allowOrigins, trimmed)
		}
	}

	return Config{
		HTTPPort:        httpPort,
		AllowOrigins:    allowOrigins,
		SignalMode:      signalMode,
		LMSBaseURL:      lmsBaseURL,
		ProviderTimeout: time.Duration(providerTimeoutMS) * time.Millisecond,
	}
}
