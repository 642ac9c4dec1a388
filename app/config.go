package app

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	coreconfig "github.com/m3rciful/taskbot/core/config"
	coredatabase "github.com/m3rciful/taskbot/core/database"
	"github.com/m3rciful/taskbot/core/fsm"
	"github.com/m3rciful/taskbot/core/paging"
	"github.com/m3rciful/taskbot/core/telegram/sender"
)

// FSMConfig tunes retries around the state store.
type FSMConfig struct {
	RetryAttempts  int `yaml:"retry_attempts" envconfig:"FSM_RETRY_ATTEMPTS"`
	RetryInitialMS int `yaml:"retry_initial_ms"`
	RetryMaxMS     int `yaml:"retry_max_ms"`
}

// Options converts the section into engine options.
func (c FSMConfig) Options() fsm.Options {
	return fsm.Options{
		RetryAttempts: c.RetryAttempts,
		RetryInitial:  time.Duration(c.RetryInitialMS) * time.Millisecond,
		RetryMax:      time.Duration(c.RetryMaxMS) * time.Millisecond,
	}
}

// TasksConfig controls the task editor list.
type TasksConfig struct {
	PageSize int `yaml:"page_size" envconfig:"TASKS_PAGE_SIZE"`
	Columns  int `yaml:"columns"`
}

// SecurityConfig holds password hashing settings.
type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" envconfig:"BCRYPT_COST"`
}

// SenderConfig tunes the outbound Telegram queue.
type SenderConfig struct {
	QueueSize      int `yaml:"queue_size"`
	Workers        int `yaml:"workers"`
	MaxRetries     int `yaml:"max_retries"`
	RetryBackoffMS int `yaml:"retry_backoff_ms"`
}

// Options converts the section into queue options.
func (c SenderConfig) Options() sender.Options {
	return sender.Options{
		QueueSize:    c.QueueSize,
		Workers:      c.Workers,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: time.Duration(c.RetryBackoffMS) * time.Millisecond,
	}
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	FSM      FSMConfig           `yaml:"fsm"`
	Tasks    TasksConfig         `yaml:"tasks"`
	Security SecurityConfig      `yaml:"security"`
	Sender   SenderConfig        `yaml:"sender"`
	Metrics  MetricsConfig       `yaml:"metrics"`
}

// CoreConfig exposes the transport and logging part.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, overlays the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if c.FSM.RetryAttempts < 0 {
		return fmt.Errorf("fsm.retry_attempts must be >= 0")
	}
	if c.Tasks.PageSize <= 0 {
		c.Tasks.PageSize = paging.DefaultSize
	}
	if c.Tasks.Columns <= 0 {
		c.Tasks.Columns = paging.DefaultColumns
	}
	switch cost := c.Security.BcryptCost; {
	case cost == 0:
		c.Security.BcryptCost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost || cost > bcrypt.MaxCost:
		return fmt.Errorf("security.bcrypt_cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
