package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del cliente y del backend de desarrollo.
type Config struct {
	APIBaseURL          string        `env:"SCORESIGHT_API_URL" envDefault:"http://localhost:8000"`
	HTTPTimeout         time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`
	ChatRequestTimeout  time.Duration `env:"CHAT_REQUEST_TIMEOUT" envDefault:"0s"`
	QuickSendDelay      time.Duration `env:"QUICK_SEND_DELAY" envDefault:"100ms"`
	TranscriptDelay     time.Duration `env:"TRANSCRIPT_SUBMIT_DELAY" envDefault:"300ms"`
	SpeechLanguage      string        `env:"SPEECH_LANGUAGE" envDefault:"en-US"`
	SpeechCommand       string        `env:"SPEECH_COMMAND"`
	RecognizerCommand   string        `env:"SPEECH_RECOGNIZER_COMMAND"`
	// sqlite necesita un binario con cgo; sin cgo usar memory, redis o postgres.
	StoreDriver         string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath          string        `env:"SQLITE_PATH" envDefault:"scoresight.db"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	RedisAddr           string        `env:"REDIS_ADDR"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" envDefault:"0"`
	HTTPPort            string        `env:"HTTP_PORT" envDefault:"8000"`
	JWTSecret           string        `env:"JWT_SECRET" envDefault:"scoresight-dev-secret"`
	JWTAccessTTLMinutes int           `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"1440"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
