// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AdminAuthConfig provides settings for the single-operator admin login.
type AdminAuthConfig interface {
	JWTConfig
	GetAdminEmail() string
	GetAdminPasswordHash() string
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// RazorpayConfig provides settings for the Razorpay payment gateway.
type RazorpayConfig interface {
	GetRazorpayKeyID() string
	GetRazorpayKeySecret() string
	GetCurrency() string
	GetMerchantName() string
	GetCheckoutThemeColor() string
	IsRazorpayEnabled() bool
}

// FunnelConfig provides settings for the conversion funnel.
type FunnelConfig interface {
	GetSessionTTL() time.Duration
	GetPhoneRegion() string
	GetSuccessRedirectURL() string
}

// SchedulerConfig provides settings for the asynq follow-up scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetFollowUpDelay() time.Duration
}

// WhatsAppConfig provides settings for the WhatsApp sending service.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// AnalyticsConfig provides settings for the analytics event forwarder.
type AnalyticsConfig interface {
	GetAnalyticsURL() string
	GetAnalyticsAPIKey() string
	IsAnalyticsEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTAccessSecret    string
	AccessTokenTTL     time.Duration
	AdminEmail         string
	AdminPasswordHash  string
	CORSAllowAll       bool
	CORSOrigins        []string
	RazorpayKeyID      string
	RazorpayKeySecret  string
	Currency           string
	MerchantName       string
	CheckoutThemeColor string
	SessionTTL         time.Duration
	PhoneRegion        string
	SuccessRedirectURL string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	FollowUpDelay      time.Duration
	WhatsAppURL        string
	WhatsAppKey        string
	WhatsAppDeviceID   string
	AnalyticsURL       string
	AnalyticsAPIKey    string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AdminAuthConfig implementation
func (c *Config) GetAdminEmail() string            { return c.AdminEmail }
func (c *Config) GetAdminPasswordHash() string     { return c.AdminPasswordHash }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// RazorpayConfig implementation
func (c *Config) GetRazorpayKeyID() string      { return c.RazorpayKeyID }
func (c *Config) GetRazorpayKeySecret() string  { return c.RazorpayKeySecret }
func (c *Config) GetCurrency() string           { return c.Currency }
func (c *Config) GetMerchantName() string       { return c.MerchantName }
func (c *Config) GetCheckoutThemeColor() string { return c.CheckoutThemeColor }
func (c *Config) IsRazorpayEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// FunnelConfig implementation
func (c *Config) GetSessionTTL() time.Duration    { return c.SessionTTL }
func (c *Config) GetPhoneRegion() string          { return c.PhoneRegion }
func (c *Config) GetSuccessRedirectURL() string   { return c.SuccessRedirectURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string             { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool       { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string       { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int        { return c.AsynqConcurrency }
func (c *Config) GetFollowUpDelay() time.Duration { return c.FollowUpDelay }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

// AnalyticsConfig implementation
func (c *Config) GetAnalyticsURL() string    { return c.AnalyticsURL }
func (c *Config) GetAnalyticsAPIKey() string { return c.AnalyticsAPIKey }
func (c *Config) IsAnalyticsEnabled() bool   { return c.AnalyticsURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:     mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:  getEnv("RAZORPAY_KEY_SECRET", ""),
		Currency:           getEnv("PAYMENT_CURRENCY", "INR"),
		MerchantName:       getEnv("MERCHANT_NAME", "NoticeDesk"),
		CheckoutThemeColor: getEnv("CHECKOUT_THEME_COLOR", "#1a56db"),
		SessionTTL:         mustDuration(getEnv("FUNNEL_SESSION_TTL", "2h")),
		PhoneRegion:        getEnv("PHONE_REGION", "IN"),
		SuccessRedirectURL: getEnv("SUCCESS_REDIRECT_URL", "/payment-success"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		FollowUpDelay:      mustDuration(getEnv("FOLLOWUP_DELAY", "1h")),
		WhatsAppURL:        getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:        getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:   getEnv("WHATSAPP_DEVICE_ID", ""),
		AnalyticsURL:       getEnv("ANALYTICS_URL", ""),
		AnalyticsAPIKey:    getEnv("ANALYTICS_API_KEY", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("FUNNEL_SESSION_TTL must be a positive duration")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
