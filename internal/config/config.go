package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTarget is used when neither an override nor APP_URL is set.
const DefaultTarget = "http://toronto_web_dev:3000"

type Config struct {
	Target          string        // base URL under test, resolved once
	LogDir          string        // logs directory
	Driver          string        // "chromedp" or "playwright"
	ChromePath      string        // optional browser binary; empty means auto-detect
	Headless        bool          // run without a visible window
	WindowWidth     int           // viewport width in px
	WindowHeight    int           // viewport height in px
	ImplicitWait    time.Duration // per-element lookup bound
	PageLoadTimeout time.Duration // per-navigation bound
}

// fileConfig mirrors Config for the optional YAML file. Pointers mark
// fields that were actually present.
type fileConfig struct {
	Target            string `yaml:"target"`
	LogDir            string `yaml:"log_dir"`
	Driver            string `yaml:"driver"`
	ChromePath        string `yaml:"chrome_path"`
	Headless          *bool  `yaml:"headless"`
	WindowSize        string `yaml:"window_size"`
	ImplicitWaitMS    *int   `yaml:"implicit_wait_ms"`
	PageLoadTimeoutMS *int   `yaml:"page_load_timeout_ms"`
}

// ResolveTarget returns the first non-empty candidate of override, env
// and DefaultTarget.
func ResolveTarget(override, env string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if v := strings.TrimSpace(env); v != "" {
		return v
	}
	return DefaultTarget
}

func defaults() Config {
	return Config{
		LogDir:          "logs",
		Driver:          "chromedp",
		Headless:        true,
		WindowWidth:     1920,
		WindowHeight:    1080,
		ImplicitWait:    10 * time.Second,
		PageLoadTimeout: 30 * time.Second,
	}
}

// FromEnv builds a Config from defaults and the process environment.
func FromEnv() Config {
	cfg := defaults()
	applyEnv(&cfg)
	cfg.Target = ResolveTarget("", os.Getenv("APP_URL"))
	return cfg
}

// Load layers defaults, the YAML file at path (if any), the environment
// and finally the explicit target override.
func Load(path, targetOverride string) (Config, error) {
	cfg := defaults()
	fileTarget := ""

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		fc.apply(&cfg)
		fileTarget = fc.Target
	}

	applyEnv(&cfg)

	env := os.Getenv("APP_URL")
	if strings.TrimSpace(env) == "" {
		env = fileTarget
	}
	cfg.Target = ResolveTarget(targetOverride, env)
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}
	if fc.Driver != "" {
		cfg.Driver = strings.ToLower(fc.Driver)
	}
	if fc.ChromePath != "" {
		cfg.ChromePath = fc.ChromePath
	}
	if fc.Headless != nil {
		cfg.Headless = *fc.Headless
	}
	if w, h, ok := parseWindowSize(fc.WindowSize); ok {
		cfg.WindowWidth, cfg.WindowHeight = w, h
	}
	if fc.ImplicitWaitMS != nil && *fc.ImplicitWaitMS >= 0 {
		cfg.ImplicitWait = time.Duration(*fc.ImplicitWaitMS) * time.Millisecond
	}
	if fc.PageLoadTimeoutMS != nil && *fc.PageLoadTimeoutMS > 0 {
		cfg.PageLoadTimeout = time.Duration(*fc.PageLoadTimeoutMS) * time.Millisecond
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("BROWSER_DRIVER"); v != "" {
		cfg.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = b
		}
	}
	if w, h, ok := parseWindowSize(os.Getenv("WINDOW_SIZE")); ok {
		cfg.WindowWidth, cfg.WindowHeight = w, h
	}
	if v := os.Getenv("IMPLICIT_WAIT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.ImplicitWait = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("PAGE_LOAD_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.PageLoadTimeout = time.Duration(ms) * time.Millisecond
		}
	}
}

// parseWindowSize accepts "1920,1080" or "1920x1080".
func parseWindowSize(s string) (int, int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' || r == 'X' })
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
