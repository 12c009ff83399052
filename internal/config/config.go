package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	TranscodeModeHTTP  = "http"
	TranscodeModeQueue = "queue"
)

type Settings struct {
	ServerPort int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	VODBucket      string

	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	TranscodeAPIURL   string
	TranscodeAPIKey   string
	TranscodeMode     string
	TranscodeTimeout  time.Duration
	TranscodeWorkDir  string
	FFmpegPath        string
	WorkerConcurrency int

	CacheTTL     time.Duration
	SignedURLTTL time.Duration

	AllowedOrigins      []string
	BacklogSourceBucket string
}

// RedisEnabled reports whether a Redis host is configured.
func (s *Settings) RedisEnabled() bool {
	return s.RedisHost != ""
}

func (s *Settings) RedisAddr() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TRANSCODE_MODE", TranscodeModeHTTP)
	v.SetDefault("TRANSCODE_TIMEOUT_SECONDS", 900)
	v.SetDefault("TRANSCODE_WORK_DIR", os.TempDir())
	v.SetDefault("FFMPEG_PATH", "ffmpeg")
	v.SetDefault("CACHE_TTL_SECONDS", 2700)
	v.SetDefault("SIGNED_URL_TTL_SECONDS", 3600)
	v.SetDefault("ALLOWED_ORIGINS", "null")
	v.SetDefault("WORKER_CONCURRENCY", 2)

	for _, key := range []string{"MINIO_ENDPOINT", "MINIO_USR", "MINIO_PWD", "MINIO_BUCKET_VOD", "TRANSCODE_API_KEY"} {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	endpoint, useSSL := parseEndpoint(v.GetString("MINIO_ENDPOINT"))
	if raw := v.GetString("MINIO_USE_SSL"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("MINIO_USE_SSL must be a boolean: %w", err)
		}
		useSSL = b
	}

	s := &Settings{
		ServerPort: v.GetInt("SERVER_PORT"),

		MinioEndpoint:  endpoint,
		MinioAccessKey: v.GetString("MINIO_USR"),
		MinioSecretKey: v.GetString("MINIO_PWD"),
		MinioUseSSL:    useSSL,
		VODBucket:      v.GetString("MINIO_BUCKET_VOD"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetInt("REDIS_PORT"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		TranscodeAPIURL:   v.GetString("TRANSCODE_API_URL"),
		TranscodeAPIKey:   v.GetString("TRANSCODE_API_KEY"),
		TranscodeMode:     strings.ToLower(v.GetString("TRANSCODE_MODE")),
		TranscodeTimeout:  time.Duration(v.GetInt("TRANSCODE_TIMEOUT_SECONDS")) * time.Second,
		TranscodeWorkDir:  v.GetString("TRANSCODE_WORK_DIR"),
		FFmpegPath:        v.GetString("FFMPEG_PATH"),
		WorkerConcurrency: v.GetInt("WORKER_CONCURRENCY"),

		CacheTTL:     time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		SignedURLTTL: time.Duration(v.GetInt("SIGNED_URL_TTL_SECONDS")) * time.Second,

		AllowedOrigins:      splitList(v.GetString("ALLOWED_ORIGINS")),
		BacklogSourceBucket: v.GetString("BACKLOG_SOURCE_BUCKET"),
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.CacheTTL <= 0 || s.SignedURLTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS and SIGNED_URL_TTL_SECONDS must be positive")
	}
	// a cached playlist must never outlive the signatures it contains
	if s.CacheTTL >= s.SignedURLTTL {
		return fmt.Errorf("CACHE_TTL_SECONDS must be lower than SIGNED_URL_TTL_SECONDS")
	}
	if s.TranscodeMode != TranscodeModeHTTP && s.TranscodeMode != TranscodeModeQueue {
		return fmt.Errorf("TRANSCODE_MODE must be one of http, queue")
	}
	if s.WorkerConcurrency < 1 {
		s.WorkerConcurrency = 1
	}
	return nil
}

// ValidateSubmitter checks the settings needed to hand transcode jobs off.
// Only the services that submit jobs call it.
func (s *Settings) ValidateSubmitter() error {
	switch s.TranscodeMode {
	case TranscodeModeHTTP:
		if s.TranscodeAPIURL == "" {
			return fmt.Errorf("TRANSCODE_API_URL is required when TRANSCODE_MODE=http")
		}
	case TranscodeModeQueue:
		if !s.RedisEnabled() {
			return fmt.Errorf("REDIS_HOST is required when TRANSCODE_MODE=queue")
		}
	}
	return nil
}

// parseEndpoint strips the scheme from a MinIO endpoint and reports whether
// it asked for TLS.
func parseEndpoint(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "https://"), "/"), true
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(raw, "http://"), "/"), false
	default:
		return strings.TrimSuffix(raw, "/"), false
	}
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
