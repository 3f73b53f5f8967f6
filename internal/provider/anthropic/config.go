package anthropic

// defaultModel is the model used when none is specified.
const defaultModel = "claude-sonnet-4-5-20250929"

// defaultMaxTokens applies when a request carries no MaxTokens.
const defaultMaxTokens = 4000

// Config holds the settings for the Anthropic provider.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// defaults fills in zero-value fields.
func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
}
