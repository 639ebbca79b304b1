package structures

import "time"

type Server struct {
	Host         string        `yaml:"host" validate:"required"`
	Port         int           `yaml:"port" validate:"required|uint|min:1"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	CORSOrigins  []string      `yaml:"corsOrigins" mapstructure:"corsOrigins"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type LLMConfig struct {
	Provider     string        `yaml:"provider" validate:"required"`
	Model        string        `yaml:"model"`
	OpenAIAPIKey string        `yaml:"openaiApiKey" mapstructure:"openaiApiKey"`
	OpenAIURL    string        `yaml:"openaiUrl" mapstructure:"openaiUrl"`
	GeminiAPIKey string        `yaml:"geminiApiKey" mapstructure:"geminiApiKey"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LimitConfig struct {
	Requests int           `yaml:"requests" validate:"required|int|min:1"`
	Window   time.Duration `yaml:"window" validate:"required|min:1"`
}

type RateLimitConfig struct {
	Prefix string      `yaml:"prefix"`
	Global LimitConfig `yaml:"global"`
	PerIP  LimitConfig `yaml:"perIp" mapstructure:"perIp"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type StoreConfig struct {
	Backend string `yaml:"backend" validate:"in:none,redis,sqlite,postgres"`
	DSN     string `yaml:"dsn"`
}

type PlansConfig struct {
	PageSize int `yaml:"pageSize" mapstructure:"pageSize"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SchedulerConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval" mapstructure:"refreshInterval"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer" mapstructure:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	LLM       LLMConfig       `yaml:"llm"`
	RateLimit RateLimitConfig `yaml:"rateLimit" mapstructure:"rateLimit"`
	Redis     RedisConfig     `yaml:"redis"`
	Store     StoreConfig     `yaml:"store"`
	Plans     PlansConfig     `yaml:"plans"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}
