package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName       string
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string

	S3Region     string
	S3Bucket     string
	S3PublicHost string
	// S3Endpoint overrides the AWS endpoint, e.g. for a local MinIO or Ceph RGW.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	WebhookSecret string
	// DeployDir is the checkout the update command runs in.
	DeployDir      string
	UpdateToolURL  string
	UpdateToolName string
	UpdateTimeout  time.Duration
	WebhookGitPull bool
	SyslogTag      string
}

func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("UPDATE_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parse UPDATE_TIMEOUT: %w", err)
	}

	gitPull, err := strconv.ParseBool(getEnv("WEBHOOK_GIT_PULL", "false"))
	if err != nil {
		return nil, fmt.Errorf("parse WEBHOOK_GIT_PULL: %w", err)
	}

	cfg := &Config{
		ServiceName:       getEnv("SERVICE_NAME", "template-api"),
		HTTPListenAddr:    getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsListenAddr: getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Bucket:          getEnv("S3_BUCKET", "phpcloud-templates"),
		S3PublicHost:      getEnv("S3_PUBLIC_HOST", "s3.amazonaws.com"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		WebhookSecret:     getEnv("WEBHOOK_SECRET", ""),
		DeployDir:         getEnv("DEPLOY_DIR", ""),
		UpdateToolURL:     getEnv("UPDATE_TOOL_URL", "https://getcomposer.org/composer.phar"),
		UpdateToolName:    getEnv("UPDATE_TOOL_NAME", "composer"),
		UpdateTimeout:     timeout,
		WebhookGitPull:    gitPull,
		SyslogTag:         getEnv("SYSLOG_TAG", "cluster-template-webhook"),
	}

	return cfg, nil
}

// Validate reports every missing required setting in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.S3Region == "" {
		missing = append(missing, "S3_REGION")
	}
	if c.WebhookSecret == "" {
		missing = append(missing, "WEBHOOK_SECRET")
	}
	if c.DeployDir == "" {
		missing = append(missing, "DEPLOY_DIR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must both be set")
	}
	if c.UpdateTimeout <= 0 {
		return fmt.Errorf("UPDATE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
