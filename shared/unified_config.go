package shared

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// UnifiedConfiguration holds the typed runtime settings derived from the environment
type UnifiedConfiguration struct {
	Service   ServiceConfig   `json:"service"`
	Database  DatabaseConfig  `json:"database"`
	Cache     CacheConfig     `json:"cache"`
	Ingestion IngestionConfig `json:"ingestion"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServiceConfig holds timeouts for outbound calls to third-party APIs
type ServiceConfig struct {
	SearchTimeout    time.Duration `json:"search_timeout"`
	LLMTimeout       time.Duration `json:"llm_timeout"`
	MessagingTimeout time.Duration `json:"messaging_timeout"`
	PageFetchTimeout time.Duration `json:"page_fetch_timeout"`
	PageFetchDelay   time.Duration `json:"page_fetch_delay"`
	RenderJS         bool          `json:"render_js"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// CacheConfig covers the scheme list cache and the explanation LRU
type CacheConfig struct {
	SchemeTTL          time.Duration `json:"scheme_ttl"`
	ExplanationEntries int           `json:"explanation_entries"`
}

// IngestionConfig covers the periodic job and background task queue
type IngestionConfig struct {
	Interval         time.Duration `json:"interval"`
	TaskQueueSize    int           `json:"task_queue_size"`
	TaskQueueWorkers int           `json:"task_queue_workers"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Format      string `json:"format"`
	ServiceName string `json:"service_name"`
}

// NewDefaultUnifiedConfiguration returns production-ready default configuration
func NewDefaultUnifiedConfiguration() *UnifiedConfiguration {
	return &UnifiedConfiguration{
		Service: ServiceConfig{
			SearchTimeout:    30 * time.Second,
			LLMTimeout:       30 * time.Second,
			MessagingTimeout: 10 * time.Second,
			PageFetchTimeout: 20 * time.Second,
			PageFetchDelay:   500 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Cache: CacheConfig{
			SchemeTTL:          30 * time.Minute,
			ExplanationEntries: 256,
		},
		Ingestion: IngestionConfig{
			Interval:         6 * time.Hour,
			TaskQueueSize:    100,
			TaskQueueWorkers: 2,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			ServiceName: "sahayak-backend",
		},
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *UnifiedConfiguration) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "UnifiedConfiguration")
	defaults := NewDefaultUnifiedConfiguration()

	applyDuration := func(name string, value *time.Duration, fallback time.Duration) {
		if *value <= 0 {
			*value = fallback
			logger.Debugf("Applied default %s", name)
		}
	}
	applyInt := func(name string, value *int, fallback int) {
		if *value <= 0 {
			*value = fallback
			logger.Debugf("Applied default %s", name)
		}
	}

	applyDuration("Service.SearchTimeout", &c.Service.SearchTimeout, defaults.Service.SearchTimeout)
	applyDuration("Service.LLMTimeout", &c.Service.LLMTimeout, defaults.Service.LLMTimeout)
	applyDuration("Service.MessagingTimeout", &c.Service.MessagingTimeout, defaults.Service.MessagingTimeout)
	applyDuration("Service.PageFetchTimeout", &c.Service.PageFetchTimeout, defaults.Service.PageFetchTimeout)
	applyDuration("Service.PageFetchDelay", &c.Service.PageFetchDelay, defaults.Service.PageFetchDelay)

	applyInt("Database.MaxOpenConns", &c.Database.MaxOpenConns, defaults.Database.MaxOpenConns)
	applyInt("Database.MaxIdleConns", &c.Database.MaxIdleConns, defaults.Database.MaxIdleConns)
	applyDuration("Database.ConnMaxLifetime", &c.Database.ConnMaxLifetime, defaults.Database.ConnMaxLifetime)
	applyDuration("Database.ConnMaxIdleTime", &c.Database.ConnMaxIdleTime, defaults.Database.ConnMaxIdleTime)
	applyDuration("Database.PingTimeout", &c.Database.PingTimeout, defaults.Database.PingTimeout)

	applyDuration("Cache.SchemeTTL", &c.Cache.SchemeTTL, defaults.Cache.SchemeTTL)
	applyInt("Cache.ExplanationEntries", &c.Cache.ExplanationEntries, defaults.Cache.ExplanationEntries)

	applyDuration("Ingestion.Interval", &c.Ingestion.Interval, defaults.Ingestion.Interval)
	applyInt("Ingestion.TaskQueueSize", &c.Ingestion.TaskQueueSize, defaults.Ingestion.TaskQueueSize)
	applyInt("Ingestion.TaskQueueWorkers", &c.Ingestion.TaskQueueWorkers, defaults.Ingestion.TaskQueueWorkers)

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = defaults.Logging.ServiceName
	}
}

// ToJSON serializes the configuration to JSON
func (c *UnifiedConfiguration) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
