package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
		PublicURL    string        `yaml:"public_url" default:"http://localhost:8080"`
	} `yaml:"server"`

	Database struct {
		DSN             string        `yaml:"dsn"`
		MaxOpenConns    int           `yaml:"max_open_conns" default:"25"`
		MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
	} `yaml:"database"`

	Scheduler struct {
		SweepInterval        time.Duration `yaml:"sweep_interval" default:"1m"`
		DispatchTimeout      time.Duration `yaml:"dispatch_timeout" default:"30s"`
		BatchSize            int           `yaml:"batch_size" default:"50"`
		MaxInterviewDuration time.Duration `yaml:"max_interview_duration" default:"2h"`
		LeaseTTL             time.Duration `yaml:"lease_ttl" default:"50s"`
	} `yaml:"scheduler"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"claude-3-haiku-20240307"`
		MaxTokens   int           `yaml:"max_tokens" default:"4096"`
		Temperature float32       `yaml:"temperature" default:"0.1"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"llm"`

	Agent struct {
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"agent"`

	Notifications struct {
		WebhookURL string        `yaml:"webhook_url"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
		Enabled    bool          `yaml:"enabled" default:"true"`
	} `yaml:"notifications"`

	Auth struct {
		OperatorKey string `yaml:"operator_key"`
		AgentKey    string `yaml:"agent_key"`
	} `yaml:"auth"`

	Meetings struct {
		BaseURL string `yaml:"base_url" default:"https://meet.hireloop.dev"`
	} `yaml:"meetings"`

	RateLimit struct {
		PublicPerMinute int `yaml:"public_per_minute" default:"30"`
		PublicBurst     int `yaml:"public_burst" default:"5"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.PublicURL = "http://localhost:8080"

	config.Database.MaxOpenConns = 25
	config.Database.MaxIdleConns = 5
	config.Database.ConnMaxLifetime = 30 * time.Minute

	config.Scheduler.SweepInterval = time.Minute
	config.Scheduler.DispatchTimeout = 30 * time.Second
	config.Scheduler.BatchSize = 50
	config.Scheduler.MaxInterviewDuration = 2 * time.Hour
	config.Scheduler.LeaseTTL = 50 * time.Second

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-haiku-20240307"
	config.LLM.MaxTokens = 4096
	config.LLM.Temperature = 0.1
	config.LLM.Timeout = 30 * time.Second

	config.Agent.Timeout = 30 * time.Second
	config.Agent.MaxRetries = 3

	config.Notifications.Timeout = 10 * time.Second
	config.Notifications.Enabled = true

	config.Meetings.BaseURL = "https://meet.hireloop.dev"

	config.RateLimit.PublicPerMinute = 30
	config.RateLimit.PublicBurst = 5

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if publicURL := os.Getenv("PUBLIC_URL"); publicURL != "" {
		c.Server.PublicURL = publicURL
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}

	if interval := os.Getenv("SCHEDULER_SWEEP_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.Scheduler.SweepInterval = d
		}
	}

	if timeout := os.Getenv("SCHEDULER_DISPATCH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Scheduler.DispatchTimeout = d
		}
	}

	if maxDuration := os.Getenv("SCHEDULER_MAX_INTERVIEW_DURATION"); maxDuration != "" {
		if d, err := time.ParseDuration(maxDuration); err == nil {
			c.Scheduler.MaxInterviewDuration = d
		}
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if agentURL := os.Getenv("AGENT_BASE_URL"); agentURL != "" {
		c.Agent.BaseURL = agentURL
	}

	if agentKey := os.Getenv("AGENT_API_KEY"); agentKey != "" {
		c.Agent.APIKey = agentKey
	}

	if webhookURL := os.Getenv("NOTIFICATIONS_WEBHOOK_URL"); webhookURL != "" {
		c.Notifications.WebhookURL = webhookURL
	}

	if enabled := os.Getenv("NOTIFICATIONS_ENABLED"); enabled != "" {
		c.Notifications.Enabled = enabled == "true" || enabled == "1"
	}

	if operatorKey := os.Getenv("OPERATOR_API_KEY"); operatorKey != "" {
		c.Auth.OperatorKey = operatorKey
	}

	if agentCallbackKey := os.Getenv("AGENT_CALLBACK_KEY"); agentCallbackKey != "" {
		c.Auth.AgentKey = agentCallbackKey
	}

	if meetBaseURL := os.Getenv("MEETINGS_BASE_URL"); meetBaseURL != "" {
		c.Meetings.BaseURL = meetBaseURL
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}
}
