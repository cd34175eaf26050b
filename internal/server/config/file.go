package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/flagx"
	"github.com/dmitrijs2005/boostmanager/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Zero values leave the current setting untouched.
type FileConfig struct {
	HTTPAddr                     string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	LogBackend                   string         `json:"log_backend" yaml:"log_backend"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	RememberMeValidityDuration   timex.Duration `json:"remember_me_validity_duration" yaml:"remember_me_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword                string         `json:"redis_password" yaml:"redis_password"`
	RateCacheTTL                 timex.Duration `json:"rate_cache_ttl" yaml:"rate_cache_ttl"`
	SuperAdminEmails             []string       `json:"superadmin_emails" yaml:"superadmin_emails"`
	LockoutMaxAttempts           int            `json:"lockout_max_attempts" yaml:"lockout_max_attempts"`
	LockoutDuration              timex.Duration `json:"lockout_duration" yaml:"lockout_duration"`
	OnlineWindow                 timex.Duration `json:"online_window" yaml:"online_window"`
	DollarRateURL                string         `json:"dollar_rate_url" yaml:"dollar_rate_url"`
	ExchangeRatesURL             string         `json:"exchange_rates_url" yaml:"exchange_rates_url"`
	RAWGBaseURL                  string         `json:"rawg_base_url" yaml:"rawg_base_url"`
	RAWGAPIKey                   string         `json:"rawg_api_key" yaml:"rawg_api_key"`
	HealthCheckSchedule          string         `json:"health_check_schedule" yaml:"health_check_schedule"`
	OnlineUsersSchedule          string         `json:"online_users_schedule" yaml:"online_users_schedule"`
	DollarRateSchedule           string         `json:"dollar_rate_schedule" yaml:"dollar_rate_schedule"`
}

// parseFile loads the file named by -c/-config into config. JSON or YAML is
// chosen by extension. An unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	if flagx.ConfigFormat(path) == flagx.FormatYAML {
		err = yaml.Unmarshal(data, c)
	} else {
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogBackend, c.LogBackend)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.RememberMeValidityDuration, c.RememberMeValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setDuration(&config.RateCacheTTL, c.RateCacheTTL)
	if len(c.SuperAdminEmails) > 0 {
		config.SuperAdminEmails = splitList(joinList(c.SuperAdminEmails))
	}
	if c.LockoutMaxAttempts > 0 {
		config.LockoutMaxAttempts = c.LockoutMaxAttempts
	}
	setDuration(&config.LockoutDuration, c.LockoutDuration)
	setDuration(&config.OnlineWindow, c.OnlineWindow)
	setString(&config.DollarRateURL, c.DollarRateURL)
	setString(&config.ExchangeRatesURL, c.ExchangeRatesURL)
	setString(&config.RAWGBaseURL, c.RAWGBaseURL)
	setString(&config.RAWGAPIKey, c.RAWGAPIKey)
	setString(&config.HealthCheckSchedule, c.HealthCheckSchedule)
	setString(&config.OnlineUsersSchedule, c.OnlineUsersSchedule)
	setString(&config.DollarRateSchedule, c.DollarRateSchedule)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}
