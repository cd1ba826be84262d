package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"

	WhisperBackendCLI  = "cli"
	WhisperBackendHTTP = "http"
)

type Config struct {
	// ConfigFile is the absolute path of the config file read, if any.
	ConfigFile string

	Server  ServerConfig
	Logger  LoggerConfig
	Redis   RedisConfig
	Media   MediaConfig
	Whisper WhisperConfig
	LLM     LLMConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	QuizTTL  time.Duration
}

type MediaConfig struct {
	DownloaderBinary string
	TranscoderBinary string
	// TempDir is the parent of per-run working directories; empty means os.TempDir().
	TempDir string
}

type WhisperConfig struct {
	Backend   string
	Binary    string
	Model     string
	ServerURL string
	Timeout   time.Duration
}

type LLMConfig struct {
	Provider string
	// ClientName is the client reported when no generative client is wired in.
	ClientName string
	// APIKeyEnv names the environment variable holding the credential.
	// Empty disables the credential check (self-hosted providers).
	APIKeyEnv          string
	Model              string
	Temperature        float32
	ServerURL          string
	Timeout            time.Duration
	MaxTranscriptChars int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 600)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.quiz_ttl", 0)

	v.SetDefault("media.ytdlp_binary", "yt-dlp")
	v.SetDefault("media.ffmpeg_binary", "ffmpeg")
	v.SetDefault("media.temp_dir", "")

	v.SetDefault("whisper.backend", WhisperBackendCLI)
	v.SetDefault("whisper.binary", "whisper")
	v.SetDefault("whisper.model", "base")
	v.SetDefault("whisper.server_url", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("whisper.timeout", 900)

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.client_name", "google-genai")
	v.SetDefault("llm.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.server_url", "")
	v.SetDefault("llm.timeout", 120)
	v.SetDefault("llm.max_transcript_chars", 15000)
}

// LoadConfig reads .env (if present), then config.yaml (if present), then
// environment overrides such as LLM_MODEL or WHISPER_BACKEND.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := os.Getenv("TUBEQUIZ_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Reported by the caller once logging is up; stdout stays reserved for command output.
	var configFile string
	if used := v.ConfigFileUsed(); used != "" {
		configFile, _ = filepath.Abs(used)
	}

	cfg := &Config{
		ConfigFile: configFile,
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: v.GetDuration("server.write_timeout") * time.Second,
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			QuizTTL:  v.GetDuration("redis.quiz_ttl") * time.Second,
		},
		Media: MediaConfig{
			DownloaderBinary: v.GetString("media.ytdlp_binary"),
			TranscoderBinary: v.GetString("media.ffmpeg_binary"),
			TempDir:          v.GetString("media.temp_dir"),
		},
		Whisper: WhisperConfig{
			Backend:   strings.ToLower(v.GetString("whisper.backend")),
			Binary:    v.GetString("whisper.binary"),
			Model:     v.GetString("whisper.model"),
			ServerURL: v.GetString("whisper.server_url"),
			Timeout:   v.GetDuration("whisper.timeout") * time.Second,
		},
		LLM: LLMConfig{
			Provider:           strings.ToLower(v.GetString("llm.provider")),
			ClientName:         v.GetString("llm.client_name"),
			APIKeyEnv:          v.GetString("llm.api_key_env"),
			Model:              v.GetString("llm.model"),
			Temperature:        float32(v.GetFloat64("llm.temperature")),
			ServerURL:          v.GetString("llm.server_url"),
			Timeout:            v.GetDuration("llm.timeout") * time.Second,
			MaxTranscriptChars: v.GetInt("llm.max_transcript_chars"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and providers.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
	case ProviderOllama:
		if c.LLM.ServerURL == "" {
			return fmt.Errorf("llm.server_url is required for provider %q", ProviderOllama)
		}
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}

	switch c.Whisper.Backend {
	case WhisperBackendCLI:
	case WhisperBackendHTTP:
		if c.Whisper.ServerURL == "" {
			return fmt.Errorf("whisper.server_url is required for backend %q", WhisperBackendHTTP)
		}
	default:
		return fmt.Errorf("unknown whisper.backend %q", c.Whisper.Backend)
	}

	if c.LLM.MaxTranscriptChars <= 0 {
		return fmt.Errorf("llm.max_transcript_chars must be positive")
	}
	return nil
}
