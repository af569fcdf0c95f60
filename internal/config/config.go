package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config はAPIサーバー・ワーカー・マイグレーションの設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Server
	ServerPort     string
	RequestTimeout time.Duration

	// CORS
	CORSAllowedOrigin string

	// Rate Limit（req/min/クライアント）
	RateLimitGeneral int
	RateLimitWrite   int
	// TrustedProxy が true のときだけ X-Forwarded-For で接続元を識別する。
	TrustedProxy bool

	// Cycle
	CycleHistoryLimit int

	// Worker
	BackfillInterval time.Duration
	// MetricsPort はワーカーが /metrics を公開するポート。
	MetricsPort string
}

// ClientConfig は端末クライアントの設定を保持する。
type ClientConfig struct {
	// APIURL はaction付きリクエストを送る単一エンドポイントのURL。
	APIURL string
	// APITimeout は1回のAPI呼び出しに許す最大時間。
	APITimeout time.Duration
	// StateDir はuser_idの永続化ファイルとクライアントログの保存先。
	StateDir string
	// SplashDelay はスプラッシュ画面からメニューへ自動遷移するまでの時間。
	SplashDelay time.Duration
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitWrite = getEnvInt("RATE_LIMIT_WRITE", 30)
	cfg.TrustedProxy = getEnvBool("TRUSTED_PROXY", false)
	cfg.CycleHistoryLimit = getEnvInt("CYCLE_HISTORY_LIMIT", 10)
	cfg.BackfillInterval = getEnvDuration("BACKFILL_INTERVAL", 24*time.Hour)
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")

	return cfg, nil
}

// LoadClient は環境変数からClientConfigを読み込む。
// クライアントには必須の環境変数はない。
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}

	cfg.APIURL = getEnvString("CYCLE_API_URL", "http://localhost:8080/api/cycle")
	cfg.APITimeout = getEnvDuration("CLIENT_API_TIMEOUT", 10*time.Second)
	cfg.SplashDelay = getEnvDuration("CLIENT_SPLASH_DELAY", 2500*time.Millisecond)

	cfg.StateDir = os.Getenv("CLIENT_STATE_DIR")
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		cfg.StateDir = filepath.Join(dir, "cycle")
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
