package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"PRINTSHOP_ENV" env-default:"local"` // environment
	API        APIConfig        `yaml:"api"`
	Poller     PollerConfig     `yaml:"poller"`
	Session    SessionConfig    `yaml:"session"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Log        LogConfig        `yaml:"log"`
	Workshop   WorkshopConfig   `yaml:"workshop"`
}

// APIConfig настройки клиента бэкенда магазина
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" env:"API_BASE" env-default:"http://localhost:8000"`
	Timeout    time.Duration `yaml:"timeout" env-default:"15s"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"300ms"`
}

// PollerConfig интервалы опроса статуса заказа
type PollerConfig struct {
	ActiveInterval time.Duration `yaml:"active_interval" env-default:"4s"`
	IdleInterval   time.Duration `yaml:"idle_interval" env-default:"10s"`
	// VisibleFor - сколько заказ считается "видимым" после последнего запроса к дашборду
	VisibleFor time.Duration `yaml:"visible_for" env-default:"30s"`
	// IdleTTL - через сколько без запросов поллер останавливается
	IdleTTL time.Duration `yaml:"idle_ttl" env-default:"5m"`
}

// SessionConfig где хранится токен, локаль и маркер корзины
type SessionConfig struct {
	Path string `yaml:"path" env:"PRINTSHOP_SESSION" env-default:"./printshop.db"`
}

// HTTPServerConfig структура http сервера дашборда
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// LogConfig если File пустой - пишем в stdout
type LogConfig struct {
	File string `yaml:"file" env:"PRINTSHOP_LOG_FILE"`
}

type WorkshopConfig struct {
	PageSize int `yaml:"page_size" env-default:"25"`
}

// MustLoad - путь берётся из флага, затем из CONFIG_PATH.
// Если файла нет совсем, конфигурация собирается из переменных окружения и значений по умолчанию.
func MustLoad(flagPath string) *Config {
	configPath := fetchConfigPath(flagPath)
	if configPath == "" {
		return MustLoadFromEnv()
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv("CONFIG_PATH")
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}

// MustLoadFromEnv читает только окружение
func MustLoadFromEnv() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("can't read config from env: %v", err)
	}
	return &cfg
}
