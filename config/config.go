// Package config loads the bot configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no path is given and the file exists.
const DefaultPath = "elog.conf"

// Config holds all configuration for the bot. Keys are the same in the YAML
// file and in the environment.
type Config struct {
	SlackToken string `yaml:"SLACK_BOT_TOKEN" env:"SLACK_BOT_TOKEN" validate:"required"`

	// BotID is the Slack user id of the bot, looked up with auth.test when empty.
	BotID string `yaml:"BOT_ID" env:"BOT_ID"`

	XMLUser     string `yaml:"XML_USER" env:"XML_USER" validate:"required"`
	XMLPassword string `yaml:"XML_PASSWORD" env:"XML_PASSWORD"`
	ElogURL     string `yaml:"ELOG_URL" env:"ELOG_URL" validate:"required,url"`

	// PermalinkBaseURL is the Slack archive URL message links are built on.
	PermalinkBaseURL string `yaml:"PERMALINK_BASE_URL" env:"PERMALINK_BASE_URL" validate:"required,url"`

	// ChannelCategories maps channel names to logbook categories.
	ChannelCategories map[string]string `yaml:"CHANNEL_CATEGORIES" env:"CHANNEL_CATEGORIES"`

	// CategoryAliases maps shorthands accepted by /cat to logbook categories.
	CategoryAliases map[string]string `yaml:"CATEGORY_ALIASES" env:"CATEGORY_ALIASES"`

	PollInterval time.Duration `yaml:"POLL_INTERVAL" env:"POLL_INTERVAL" validate:"gt=0"`
	ReadWait     time.Duration `yaml:"READ_WAIT" env:"READ_WAIT" validate:"gt=0"`
	HTTPTimeout  time.Duration `yaml:"HTTP_TIMEOUT" env:"HTTP_TIMEOUT" validate:"gt=0"`

	// HealthAddr is the listen address of the health endpoint, empty disables it.
	HealthAddr string `yaml:"HEALTH_ADDR" env:"HEALTH_ADDR"`

	DevMode bool `yaml:"DEV_MODE" env:"DEV_MODE"`
}

func defaults() Config {
	return Config{
		PollInterval: time.Second,
		ReadWait:     500 * time.Millisecond,
		HTTPTimeout:  30 * time.Second,
		HealthAddr:   ":8080",
	}
}

// Load reads path, applies the environment on top and validates the result.
// An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := ioutil.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if len(cfg.CategoryAliases) > 0 {
		aliases := make(map[string]string, len(cfg.CategoryAliases))
		for k, v := range cfg.CategoryAliases {
			aliases[strings.ToLower(k)] = v
		}
		cfg.CategoryAliases = aliases
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("yaml"); name != "" {
			return name
		}
		return fld.Name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "failed " + e.Tag() + " validation"
	}
}
