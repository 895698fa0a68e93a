package configuration

import (
	"fmt"
	"os"
	"strings"

	"portal/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var defaults = map[string]any{
	"app.profile":             ProfileDefault,
	"app.port":                8080,
	"app.base_path":           "",
	"app.log_level":           "info",
	"app.locale":              "en",
	"app.session_cookie":      "portal_session",
	"app.secure_cookies":      true,
	"app.reset_token_expiry":  60,
	"app.reset_throttle":      60,
	"app.requests_per_minute": 5,
	"app.cleanup_interval":    60,

	"database.type": ProviderPostgres,
	"cache.type":    ProviderMemory,

	"events.type":  ProviderMemory,
	"events.topic": "notifications",

	"notifier.smtp.enable_tls":      false,
	"notifier.smtp.skip_verify_tls": false,

	"telemetry.enabled":      false,
	"telemetry.service_name": AppName,
}

// providerDefaults only apply once the provider type is known.
var providerDefaults = map[string]map[string]any{
	"database.type=" + ProviderPostgres: {
		"database.port":    int32(5432),
		"database.sslmode": "disable",
	},
	"events.type=" + ProviderJetstream: {
		"events.jetstream.port": "4222",
	},
}

// envKey maps APP__BASE_PATH to app.base_path.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}

// splitList accepts "a,b", "a b" and "[a, b]".
func splitList(value string) []string {
	value = strings.Trim(value, "[]")
	separator := func(r rune) bool { return r == ',' }
	if !strings.Contains(value, ",") {
		separator = func(r rune) bool { return r == ' ' || r == '\t' }
	}

	items := strings.FieldsFunc(value, separator)
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items
}

func configFilePath() string {
	if path := os.Getenv("CONFIG_FILE_PATH"); path != "" {
		return path
	}
	for _, path := range ConfigFileSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// load layers defaults, the YAML file at filePath and the environment, in
// that order, then validates the result.
func load(filePath string) (models.Configuration, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return models.Configuration{}, fmt.Errorf("defaults: %w", err)
	}

	if filePath == "" {
		zap.L().Warn("No configuration file found")
	} else {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return models.Configuration{}, fmt.Errorf("%s: %w", filePath, err)
		}
		zap.L().Info("Read configuration from file", zap.String("path", filePath))
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		zap.L().Warn("Error loading environment variables", zap.Error(err))
	}

	for _, key := range ArrayConfigFields {
		if raw := k.String(key); raw != "" {
			_ = k.Set(key, splitList(raw))
		}
	}

	for condition, values := range providerDefaults {
		key, want, _ := strings.Cut(condition, "=")
		if k.String(key) != want {
			continue
		}
		for name, value := range values {
			if !k.Exists(name) {
				_ = k.Set(name, value)
			}
		}
	}

	var config models.Configuration
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return models.Configuration{}, err
	}
	if err := validator.New().Struct(config); err != nil {
		return models.Configuration{}, err
	}

	config.App.BasePath = strings.TrimSuffix(config.App.BasePath, "/")
	return config, nil
}

// Read loads the configuration and exits when it is invalid.
func Read() models.Configuration {
	path := configFilePath()
	config, err := load(path)
	if err != nil {
		zap.L().Fatal("Invalid configuration", zap.String("path", path), zap.Error(err))
	}
	return config
}
