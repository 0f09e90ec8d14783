package llm

// Config contains the model endpoint configuration.
// Referer and Title are sent on every request as the gateway's
// application-identification headers.
type Config struct {
	APIKey  string `env:"LLM_API_KEY"`
	BaseURL string `env:"LLM_BASE_URL" envDefault:"https://openrouter.ai/api/v1/chat/completions"`
	Model   string `env:"LLM_MODEL"    envDefault:"gpt-4o-mini"`
	Referer string `env:"LLM_REFERER"  envDefault:"https://dishcraft.app"`
	Title   string `env:"LLM_TITLE"    envDefault:"Dishcraft"`
	Timeout int    `env:"LLM_TIMEOUT"  envDefault:"60"`
}
