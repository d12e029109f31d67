package opensearch

// Config holds OpenSearch connection parameters loaded from the environment.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES" envSeparator:","`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	Index        string   `env:"SEARCH_INDEX" envDefault:"subscriptions"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
}

// Enabled reports whether a cluster is configured.
func (c Config) Enabled() bool {
	return len(c.Addresses) > 0
}
