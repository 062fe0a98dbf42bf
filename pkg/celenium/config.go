package celenium

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Networks maps a network name to its API base URL.
var Networks = map[string]string{
	"mainnet": "https://api.celenium.io/v1",
	"mocha":   "https://api-mocha.celenium.io/v1",
	"arabica": "https://api-arabica.celenium.io/v1",
}

const DefaultNetwork = "mainnet"

// Config holds the client settings that are read from the environment.
type Config struct {
	BaseURL      string        `env:"CELENIUM_BASE_URL"`                         // overrides the network URL when set
	Timeout      time.Duration `env:"CELENIUM_TIMEOUT"       envDefault:"10s"`   // per-request timeout
	BlobsLimit   int           `env:"CELENIUM_BLOBS_LIMIT"   envDefault:"100"`   // page size for /block/{h}/blobs
	RollupsLimit int           `env:"CELENIUM_ROLLUPS_LIMIT" envDefault:"100"`   // page size for /rollup
	UserAgent    string        `env:"CELENIUM_USER_AGENT"    envDefault:"blobr"` // sent with every request
}

// LoadConfig loads client configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse celenium config: %w", err)
	}
	return cfg, nil
}

// WithNetwork fills BaseURL from the network table unless it was overridden.
func (c Config) WithNetwork(network string) (Config, error) {
	if c.BaseURL != "" {
		return c, nil
	}
	u, ok := Networks[strings.ToLower(network)]
	if !ok {
		return c, fmt.Errorf("unknown network %q (known: %s)", network, strings.Join(NetworkNames(), ", "))
	}
	c.BaseURL = u
	return c, nil
}

// NetworkNames returns the known network names in sorted order.
func NetworkNames() []string {
	names := make([]string, 0, len(Networks))
	for n := range Networks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
