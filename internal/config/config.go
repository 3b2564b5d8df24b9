package config

type Config struct {
	Server  ServerConfig
	Board   BoardConfig
	Ollama  OllamaConfig
	Storage StorageConfig
	Log     LogConfig
	API     APIConfig
}

type ServerConfig struct {
	Port int
}

// BoardConfig points at the chat platform hosting the profile board.
// ChannelID may be empty; operations then fail with a configuration error
// at the orchestrator boundary rather than at load time.
type BoardConfig struct {
	BaseURL   string
	Token     string
	ChannelID string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

// APIConfig holds the bearer token guarding the HTTP API. Empty disables auth.
type APIConfig struct {
	Token string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Board: BoardConfig{
			BaseURL: "http://localhost:8090",
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.1",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/memberboard/config.json, then applies MEMBERBOARD_*
// environment variable overrides. Secrets (platform bot token, API bearer
// token) come from the environment only.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
