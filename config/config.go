// Package config loads the application configuration from yaml files with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	// defaultTokenTTL is the lifetime of a pending auth request.
	defaultTokenTTL = 24 * time.Hour

	// defaultReaperBatchSize stays under Firestore's 500 writes per batch.
	defaultReaperBatchSize = 450
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
	} `json:"http" yaml:"http"`

	// Firebase holds the project the token store, profile store and
	// identity provider live in.
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// Auth configures the token lifecycle.
	Auth *AuthConfig `json:"auth" yaml:"auth"`

	SecretKey struct {
		// Service signs the bearer tokens accepted on /internal routes.
		Service string `json:"service" yaml:"service"`
	} `json:"secretKey" yaml:"secretKey"`

	// Mail configures the outbound verification email channel.
	Mail *MailConfig `json:"mail" yaml:"mail"`

	// PubSub configures the auth event side channel.
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// TestRoutes enables the diagnostic surface used by test harnesses,
	// including raw tokens in create responses. Never enable in production.
	TestRoutes *TestRoutesConfig `json:"testRoutes" yaml:"testRoutes"`
}

// FirebaseConfig points at the Firebase/GCP project backing the service.
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// AuthConfig defines token lifecycle configuration.
type AuthConfig struct {
	TokenTTL        time.Duration `json:"tokenTtl" yaml:"tokenTtl"`
	ReaperBatchSize int           `json:"reaperBatchSize" yaml:"reaperBatchSize"`
}

// MailConfig selects and configures the outbound email provider.
type MailConfig struct {
	// Provider is "mailgun" or "log". Empty falls back to "log".
	Provider string         `json:"provider" yaml:"provider"`
	From     string         `json:"from" yaml:"from"`
	Mailgun  *MailgunConfig `json:"mailgun" yaml:"mailgun"`
}

// MailgunConfig holds Mailgun API credentials.
type MailgunConfig struct {
	APIHost  string `json:"apiHost" yaml:"apiHost"`
	Domain   string `json:"domain" yaml:"domain"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub.
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider).
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider).
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider).
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// TestRoutesConfig defines configuration for testing endpoints.
type TestRoutesConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// TokenTTL returns the configured request lifetime, defaulting to 24 hours.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth == nil || c.Auth.TokenTTL <= 0 {
		return defaultTokenTTL
	}

	return c.Auth.TokenTTL
}

// ReaperBatchSize returns the cleanup batch size, bounded for the store.
func (c *Config) ReaperBatchSize() int {
	if c.Auth == nil || c.Auth.ReaperBatchSize <= 0 || c.Auth.ReaperBatchSize > defaultReaperBatchSize {
		return defaultReaperBatchSize
	}

	return c.Auth.ReaperBatchSize
}

// TokensExposed reports whether raw tokens may be returned from the public
// create endpoints. Only the test harness path turns this on.
func (c *Config) TokensExposed() bool {
	return c.TestRoutes != nil && c.TestRoutes.Enabled
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: MAIL_APIHOST -> mail.apiHost (not mail.apihost)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	return LoadWithEnv[Config]("config", "config", "../config", "../../config")
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
