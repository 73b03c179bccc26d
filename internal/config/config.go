package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port        int
	BindAddress string
	DataDir     string
	LogLevel    string
	JWTSecret   string
	DevMode     bool

	// Model service settings.
	OpenAIKey       string
	OpenAIBaseURL   string
	Model           string
	MaxOutputTokens int

	// Conversation settings. HistoryWindow caps how many trailing messages
	// are resent each turn; zero resends the full transcript.
	HistoryWindow int

	// Document search. Leaving VectorStoreID empty disables the search tool
	// for every persona.
	VectorStoreID    string
	SearchMaxResults int
}

func Load() *Config {
	cfg := &Config{
		Port:             41800,
		BindAddress:      "127.0.0.1",
		DataDir:          resolveDataDir(),
		LogLevel:         "info",
		JWTSecret:        getEnv("ODONTO_JWT_SECRET", ""),
		DevMode:          getEnv("ODONTO_DEV", "false") == "true",
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("ODONTO_OPENAI_BASE_URL", ""),
		Model:            getEnv("ODONTO_MODEL", "gpt-4o-mini"),
		VectorStoreID:    getEnv("ODONTO_VECTOR_STORE_ID", ""),
		SearchMaxResults: 3,
	}

	if p := getEnv("ODONTO_PORT", ""); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}
	if b := getEnv("ODONTO_BIND", ""); b != "" {
		cfg.BindAddress = b
	}
	if d := getEnv("ODONTO_DATA_DIR", ""); d != "" {
		cfg.DataDir = d
	}
	if l := getEnv("ODONTO_LOG_LEVEL", ""); l != "" {
		cfg.LogLevel = l
	}
	if m := getEnv("ODONTO_MAX_OUTPUT_TOKENS", ""); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			cfg.MaxOutputTokens = n
		}
	}
	if w := getEnv("ODONTO_HISTORY_WINDOW", ""); w != "" {
		if n, err := strconv.Atoi(w); err == nil && n >= 0 {
			cfg.HistoryWindow = n
		}
	}
	if r := getEnv("ODONTO_SEARCH_MAX_RESULTS", ""); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n > 0 {
			cfg.SearchMaxResults = n
		}
	}

	return cfg
}

func resolveDataDir() string {
	// Resolve data dir relative to the executable, not the CWD
	exe, err := os.Executable()
	if err != nil {
		return "./data"
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "./data"
	}
	return filepath.Join(filepath.Dir(exe), "data")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
