package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"atlas-core-wave-layer/internal/domain"
)

// DefaultGraphQLURL is Wave's public GraphQL endpoint.
const DefaultGraphQLURL = "https://gql.waveapps.com/graphql/public"

// MissingEntryError names the exact environment variable that is absent or
// empty, so operators can fix configuration without guessing.
type MissingEntryError struct {
	Name string
}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("missing required environment variable %s", e.Name)
}

// BusinessConfig holds the Wave identifiers for one configured business.
// A key resolves to a complete set or loading fails; partial sets are never
// constructed.
type BusinessConfig struct {
	Key               domain.BusinessKey
	BusinessID        string
	AnchorAccountID   string
	IncomeAccountID   string
	DefaultProductID  string
	LineItemAccountID string
}

// Config is the process-wide configuration, populated once at startup.
type Config struct {
	Port           string
	InternalSecret string
	WaveToken      string
	GraphQLURL     string
	UpstreamTimeout time.Duration

	businesses map[domain.BusinessKey]BusinessConfig
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv, failing on the first missing
// entry. Configuration is assumed static for the process lifetime, so this
// runs exactly once at startup.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:            getenv("PORT"),
		GraphQLURL:      getenv("WAVE_GRAPHQL_URL"),
		UpstreamTimeout: 30 * time.Second,
		businesses:      make(map[domain.BusinessKey]BusinessConfig),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = DefaultGraphQLURL
	}
	if raw := strings.TrimSpace(getenv("WAVE_TIMEOUT_SECONDS")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid WAVE_TIMEOUT_SECONDS %q", raw)
		}
		cfg.UpstreamTimeout = time.Duration(secs) * time.Second
	}

	var err error
	if cfg.InternalSecret, err = required(getenv, "INTERNAL_SECRET"); err != nil {
		return nil, err
	}
	if cfg.WaveToken, err = required(getenv, "WAVE_TOKEN"); err != nil {
		return nil, err
	}

	for _, key := range domain.BusinessKeys() {
		bc, err := loadBusiness(getenv, key)
		if err != nil {
			return nil, err
		}
		cfg.businesses[key] = bc
	}
	return cfg, nil
}

func loadBusiness(getenv func(string) string, key domain.BusinessKey) (BusinessConfig, error) {
	suffix := key.EnvSuffix()
	bc := BusinessConfig{Key: key}
	fields := []struct {
		name string
		dst  *string
	}{
		{"WAVE_BUSINESS_ID_" + suffix, &bc.BusinessID},
		{"WAVE_ANCHOR_ACCOUNT_ID_" + suffix, &bc.AnchorAccountID},
		{"WAVE_INCOME_ACCOUNT_ID_" + suffix, &bc.IncomeAccountID},
		{"WAVE_PRODUCT_ID_" + suffix, &bc.DefaultProductID},
		{"WAVE_LINE_ITEM_ACCOUNT_ID_" + suffix, &bc.LineItemAccountID},
	}
	for _, f := range fields {
		v, err := required(getenv, f.name)
		if err != nil {
			return BusinessConfig{}, err
		}
		*f.dst = v
	}
	return bc, nil
}

func required(getenv func(string) string, name string) (string, error) {
	v := strings.TrimSpace(getenv(name))
	if v == "" {
		return "", &MissingEntryError{Name: name}
	}
	return v, nil
}

// Business resolves a key to its credential set. Unknown keys are a caller
// error, not a configuration error.
func (c *Config) Business(key domain.BusinessKey) (BusinessConfig, error) {
	bc, ok := c.businesses[key]
	if !ok {
		return BusinessConfig{}, domain.ErrUnknownBusinessKey
	}
	return bc, nil
}
