package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BookingPolicy controls how far ahead occurrences are booked and the
// defaults applied when a series has no catalog offering.
type BookingPolicy struct {
	HorizonDays            int    `mapstructure:"horizonDays"`
	DefaultDurationMin     int    `mapstructure:"defaultDurationMin"`
	DefaultBufferBeforeMin int    `mapstructure:"defaultBufferBeforeMin"`
	DefaultBufferAfterMin  int    `mapstructure:"defaultBufferAfterMin"`
	NotificationTemplate   string `mapstructure:"notificationTemplate"`
}

func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		HorizonDays:          7,
		DefaultDurationMin:   30,
		NotificationTemplate: "Your next appointment has been scheduled for %s.",
	}
}

type PolicyHolder struct {
	current atomic.Value // holds BookingPolicy
}

// NewPolicyHolder reads booking.yml (if present) and watches it for changes.
// Missing file means defaults.
func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("booking")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/bookflow/config")
	v.AddConfigPath("/etc/bookflow")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOOKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBookingPolicy()
		v.SetDefault("booking.horizonDays", defaults.HorizonDays)
		v.SetDefault("booking.defaultDurationMin", defaults.DefaultDurationMin)
		v.SetDefault("booking.defaultBufferBeforeMin", defaults.DefaultBufferBeforeMin)
		v.SetDefault("booking.defaultBufferAfterMin", defaults.DefaultBufferAfterMin)
		v.SetDefault("booking.notificationTemplate", defaults.NotificationTemplate)
	}

	var policy BookingPolicy
	if err := v.UnmarshalKey("booking", &policy); err != nil {
		return nil, err
	}
	policy = policyWithDefaults(policy)
	if err := validateBookingPolicy(policy); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(fsnotify.Event) {
		var next BookingPolicy
		if err := v.UnmarshalKey("booking", &next); err != nil {
			log.Printf("booking policy reload failed: %v", err)
			return
		}
		next = policyWithDefaults(next)
		if err := validateBookingPolicy(next); err != nil {
			log.Printf("booking policy reload rejected: %v", err)
			return
		}
		holder.current.Store(next)
	})

	return holder, nil
}

// Current returns the active policy snapshot.
func (h *PolicyHolder) Current() BookingPolicy {
	return h.current.Load().(BookingPolicy)
}

// NewStaticPolicyHolder returns a holder pinned to the given policy. Tests use it.
func NewStaticPolicyHolder(policy BookingPolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policyWithDefaults(policy))
	return holder
}

func policyWithDefaults(p BookingPolicy) BookingPolicy {
	defaults := DefaultBookingPolicy()
	if p.HorizonDays <= 0 {
		p.HorizonDays = defaults.HorizonDays
	}
	if p.DefaultDurationMin <= 0 {
		p.DefaultDurationMin = defaults.DefaultDurationMin
	}
	if strings.TrimSpace(p.NotificationTemplate) == "" {
		p.NotificationTemplate = defaults.NotificationTemplate
	}
	return p
}

func validateBookingPolicy(p BookingPolicy) error {
	if p.DefaultBufferBeforeMin < 0 || p.DefaultBufferAfterMin < 0 {
		return errors.New("booking policy: buffers must not be negative")
	}
	if !strings.Contains(p.NotificationTemplate, "%s") {
		return errors.New("booking policy: notification template needs a %s placeholder")
	}
	return nil
}
