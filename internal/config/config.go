// Package config is the alfred.json5 configuration file.
package config

import (
	"alfred/internal/platforms/myleo"
	"alfred/internal/platforms/mysa"
	"alfred/lib/configutil"
	"alfred/lib/telemetry"
	"errors"
	"os"
	"time"
)

const FileName = "alfred.json5"

type MySAConfig struct {
	BaseUrl        string `json:"base_url"`
	LoginPath      string `json:"login_path"`
	EditPermission string `json:"edit_permission"`
	PageLimit      int    `json:"page_limit"`
	// MaxPages bounds the assessment filter paging.
	MaxPages          int     `json:"max_pages"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type MyLEOConfig struct {
	BaseUrl           string  `json:"base_url"`
	UsernameSuffix    string  `json:"username_suffix"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type BrowserConfig struct {
	Headless bool   `json:"headless"`
	ExecPath string `json:"exec_path"`
	// UserDataDir keeps the chrome profile between runs so a login can be reused.
	UserDataDir         string `json:"user_data_dir"`
	LoginTimeoutSeconds int    `json:"login_timeout_seconds"`
}

func (c BrowserConfig) LoginTimeout() time.Duration {
	return time.Duration(c.LoginTimeoutSeconds) * time.Second
}

type HttpConfig struct {
	TimeoutSeconds   int  `json:"timeout_seconds"`
	CloudflareBypass bool `json:"cloudflare_bypass"`
}

func (c HttpConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Config struct {
	MySA      MySAConfig       `json:"mysa"`
	MyLEO     MyLEOConfig      `json:"myleo"`
	Browser   BrowserConfig    `json:"browser"`
	Http      HttpConfig       `json:"http"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func Default() Config {
	return Config{
		MySA: MySAConfig{
			BaseUrl:           mysa.DefaultBaseURL,
			LoginPath:         mysa.DefaultLoginPath,
			EditPermission:    mysa.DefaultEditPermission,
			PageLimit:         mysa.DefaultPageLimit,
			MaxPages:          100,
			RequestsPerSecond: 5,
		},
		MyLEO: MyLEOConfig{
			BaseUrl:           myleo.DefaultBaseURL,
			UsernameSuffix:    myleo.DefaultUsernameSuffix,
			RequestsPerSecond: 5,
		},
		Browser: BrowserConfig{
			LoginTimeoutSeconds: 60,
		},
		Http: HttpConfig{
			TimeoutSeconds: 30,
		},
	}
}

// Load reads the config at path, or searches for alfred.json5 upward from the
// working directory when path is empty. Having no config file at all is fine.
func Load(path string) (Config, error) {
	var (
		config Config
		err    error
	)
	if path != "" {
		config, err = configutil.ReadConfigOver(path, Default())
	} else {
		config, err = configutil.ReadRecursively(FileName, Default())
	}
	if errors.Is(err, os.ErrNotExist) && path == "" {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
