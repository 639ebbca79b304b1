package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"tripgen/internal/structures"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("webServer.readTimeout", 10*time.Second)
	v.SetDefault("webServer.writeTimeout", 150*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "/tmp")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("rateLimit.prefix", "ratelimit:")
	v.SetDefault("rateLimit.global.requests", 100)
	v.SetDefault("rateLimit.global.window", 24*time.Hour)
	v.SetDefault("rateLimit.perIp.requests", 5)
	v.SetDefault("rateLimit.perIp.window", 24*time.Hour)
	v.SetDefault("store.backend", "redis")
	v.SetDefault("plans.pageSize", 12)
	v.SetDefault("cache.ttl", 10*time.Second)
	v.SetDefault("scheduler.refreshInterval", time.Minute)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("logger.level", "TRIPGEN_LOG_LEVEL")
	v.BindEnv("llm.provider", "TRIPGEN_LLM_PROVIDER")
	v.BindEnv("llm.model", "TRIPGEN_LLM_MODEL")
	v.BindEnv("llm.openaiApiKey", "OPENAI_API_KEY")
	v.BindEnv("llm.geminiApiKey", "GEMINI_API_KEY")
	v.BindEnv("rateLimit.global.requests", "TRIPGEN_RATE_GLOBAL_REQUESTS")
	v.BindEnv("rateLimit.global.window", "TRIPGEN_RATE_GLOBAL_WINDOW")
	v.BindEnv("rateLimit.perIp.requests", "TRIPGEN_RATE_IP_REQUESTS")
	v.BindEnv("rateLimit.perIp.window", "TRIPGEN_RATE_IP_WINDOW")
	v.BindEnv("redis.url", "TRIPGEN_REDIS_URL")
	v.BindEnv("store.backend", "TRIPGEN_STORE_BACKEND")
	v.BindEnv("store.dsn", "TRIPGEN_STORE_DSN")
	v.BindEnv("cache.enabled", "TRIPGEN_CACHE_ENABLED")
	v.BindEnv("cache.size", "TRIPGEN_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TripPlanGenerator"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
