package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WebhookConfig controls how the webhook ingress treats event types it has no
// handler for.
type WebhookConfig struct {
	IgnoredEventTypes []string `mapstructure:"ignoredEventTypes"`
}

func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{IgnoredEventTypes: []string{}}
}

// Ignores reports whether eventType is acknowledged without processing.
func (c WebhookConfig) Ignores(eventType string) bool {
	eventType = strings.TrimSpace(eventType)
	for _, candidate := range c.IgnoredEventTypes {
		if strings.TrimSpace(candidate) == eventType {
			return true
		}
	}
	return false
}

type WebhookConfigHolder struct {
	current atomic.Value // holds WebhookConfig
}

// NewStaticWebhookConfigHolder wraps a fixed config without file watching.
func NewStaticWebhookConfigHolder(cfg WebhookConfig) *WebhookConfigHolder {
	holder := &WebhookConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewWebhookConfigHolder() (*WebhookConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("webhook")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/launchpad")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
		v.SetDefault("webhook.ignoredEventTypes", DefaultWebhookConfig().IgnoredEventTypes)
	}

	var cfg WebhookConfig
	if err := v.UnmarshalKey("webhook", &cfg); err != nil {
		return nil, err
	}
	if err := validateWebhookConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticWebhookConfigHolder(cfg)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated WebhookConfig
		if err := v.UnmarshalKey("webhook", &updated); err != nil {
			log.Printf("[webhook-config] reload failed: %v", err)
			return
		}
		if err := validateWebhookConfig(updated); err != nil {
			log.Printf("[webhook-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[webhook-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *WebhookConfigHolder) Get() WebhookConfig {
	return h.current.Load().(WebhookConfig)
}

func validateWebhookConfig(cfg WebhookConfig) error {
	for _, eventType := range cfg.IgnoredEventTypes {
		if strings.TrimSpace(eventType) == "" {
			return errors.New("webhook.ignoredEventTypes cannot contain empty entries")
		}
	}
	return nil
}
