package app

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/lms"
	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/services"
	"github.com/Corsox-Tech/pathlight-backend/internal/types"
)

const providerRoutingEnv = "PROGRESS_PROVIDERS_YAML"

//go:embed providers.yaml
var providerRoutingFS embed.FS

// fallback routing used when YAML is missing or invalid
var fallbackRouting = []providerEntry{
	{ActivityType: types.ActivityTypeExternalCourse, Kind: "lms"},
}

type providerRoutingSpec struct {
	Routing struct {
		Version   int             `yaml:"version"`
		Providers []providerEntry `yaml:"providers"`
	} `yaml:"routing"`
}

type providerEntry struct {
	ActivityType string `yaml:"activity_type"`
	Kind         string `yaml:"kind"`
	BaseURL      string `yaml:"base_url"`
}

func loadProviderRouting(log *logger.Logger) []providerEntry {
	raw, source := readProviderRouting(log)

	var spec providerRoutingSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		log.Warn("Provider routing YAML unparseable, using fallback", "error", err, "source", source)
		return fallbackRouting
	}
	if len(spec.Routing.Providers) == 0 {
		log.Warn("Provider routing YAML empty, using fallback", "source", source)
		return fallbackRouting
	}
	return spec.Routing.Providers
}

func readProviderRouting(log *logger.Logger) ([]byte, string) {
	if path := strings.TrimSpace(os.Getenv(providerRoutingEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			return raw, path
		}
		log.Warn("Provider routing override unreadable, using embedded spec", "error", err, "path", path)
	}
	raw, err := providerRoutingFS.ReadFile("providers.yaml")
	if err != nil {
		return nil, "embedded"
	}
	return raw, "embedded"
}

// wireProviders builds the live-progress registry from the routing spec.
// Entries that cannot be built (no base URL, unknown kind) are skipped; the
// affected activity types simply fall back to zero percent.
func wireProviders(log *logger.Logger, cfg Config) *services.ProviderRegistry {
	registry := services.NewProviderRegistry()

	for _, entry := range loadProviderRouting(log) {
		provider, err := buildProvider(log, cfg, entry)
		if err != nil {
			log.Warn("Skipping progress provider", "error", err, "activity_type", entry.ActivityType, "kind", entry.Kind)
			continue
		}
		registry.Register(entry.ActivityType, provider)
		log.Info("Registered progress provider", "activity_type", entry.ActivityType, "kind", entry.Kind)
	}

	return registry
}

func buildProvider(log *logger.Logger, cfg Config, entry providerEntry) (services.LiveProgressProvider, error) {
	switch entry.Kind {
	case "lms":
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = cfg.LMSBaseURL
		}
		return lms.NewClient(log, baseURL, cfg.ProviderTimeout)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", entry.Kind)
	}
}
