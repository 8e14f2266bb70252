// Package config loads the suite configuration from an optional .env file
// and UITEST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"site_uitest/domain/entities"
)

const (
	DefaultBaseURL      = "https://www.bitsight.com"
	DefaultRegistryPath = "selectors/bitsight.yaml"
	DefaultArtifactsDir = "artifacts"
)

// Browser engines
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// Driver backends
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
)

// Viewport is a browser window size in CSS pixels
type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// Config holds the suite settings. It is read once and not mutated afterwards.
type Config struct {
	BaseURL      string
	Headless     bool
	Timeout      time.Duration // bounded wait for element readiness
	NavTimeout   time.Duration // bounded wait for page loads
	SlowMo       time.Duration
	Browser      string
	Driver       string
	RegistryPath string
	ArtifactsDir string
	Video        bool
	Categories   entities.CategorySet
	AllowSubmit  bool
	Viewport     Viewport
	LogLevel     logrus.Level
	ChromeDriver string // selenium only; searched for when empty
	ChromeBinary string
}

// ValidationError aggregates every invalid setting
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load - loads envFile (or ./.env when envFile is empty and the file exists)
// and then reads the environment
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv - builds the config from the process environment only
func FromEnv() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		BaseURL:      strings.TrimRight(getEnvOrDefault("UITEST_BASE_URL", DefaultBaseURL), "/"),
		Headless:     p.bool("UITEST_HEADLESS", true),
		Timeout:      p.duration("UITEST_TIMEOUT", 10*time.Second),
		NavTimeout:   p.duration("UITEST_NAV_TIMEOUT", 30*time.Second),
		SlowMo:       p.duration("UITEST_SLOW_MO", 0),
		Browser:      strings.ToLower(getEnvOrDefault("UITEST_BROWSER", BrowserChromium)),
		Driver:       strings.ToLower(getEnvOrDefault("UITEST_DRIVER", DriverPlaywright)),
		RegistryPath: getEnvOrDefault("UITEST_REGISTRY", DefaultRegistryPath),
		ArtifactsDir: getEnvOrDefault("UITEST_ARTIFACTS", DefaultArtifactsDir),
		Video:        p.bool("UITEST_VIDEO", false),
		AllowSubmit:  p.bool("UITEST_ALLOW_SUBMIT", false),
		Viewport:     p.viewport("UITEST_VIEWPORT", Viewport{Width: 1920, Height: 1080}),
		LogLevel:     p.level("UITEST_LOG_LEVEL", logrus.InfoLevel),
		ChromeDriver: os.Getenv("UITEST_CHROMEDRIVER"),
		ChromeBinary: os.Getenv("UITEST_CHROME_BINARY"),
	}

	categories, err := entities.ParseCategories(os.Getenv("UITEST_CATEGORIES"))
	if err != nil {
		p.fail("UITEST_CATEGORIES: %v", err)
	}
	cfg.Categories = categories

	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			p.errors = append(p.errors, verr.Errors...)
		}
	}
	if len(p.errors) > 0 {
		return nil, &ValidationError{Errors: p.errors}
	}
	return cfg, nil
}

// Validate - checks settings that do not depend on parsing
func (c *Config) Validate() error {
	var errs []string
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("UITEST_BASE_URL: %q is not an absolute http(s) URL", c.BaseURL))
	}
	switch c.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		errs = append(errs, fmt.Sprintf("UITEST_BROWSER: unknown browser %q", c.Browser))
	}
	switch c.Driver {
	case DriverPlaywright, DriverSelenium:
	default:
		errs = append(errs, fmt.Sprintf("UITEST_DRIVER: unknown driver %q", c.Driver))
	}
	if c.Driver == DriverSelenium && c.Browser != BrowserChromium {
		errs = append(errs, "UITEST_DRIVER: selenium only drives chromium")
	}
	if c.Timeout <= 0 {
		errs = append(errs, "UITEST_TIMEOUT: must be positive")
	}
	if c.NavTimeout <= 0 {
		errs = append(errs, "UITEST_NAV_TIMEOUT: must be positive")
	}
	if c.SlowMo < 0 {
		errs = append(errs, "UITEST_SLOW_MO: must not be negative")
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// URL - joins a site path onto the base URL
func (c *Config) URL(path string) string {
	if path == "" || path == "/" {
		return c.BaseURL + "/"
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// ResolvePaths - anchors relative snapshot and artifact paths at root so a
// runner and the suite it starts agree on them
func (c *Config) ResolvePaths(root string) {
	c.RegistryPath = resolvePath(root, c.RegistryPath)
	c.ArtifactsDir = resolvePath(root, c.ArtifactsDir)
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Env - renders the config as UITEST_* assignments for a child process
func (c *Config) Env() []string {
	return []string{
		"UITEST_BASE_URL=" + c.BaseURL,
		"UITEST_HEADLESS=" + strconv.FormatBool(c.Headless),
		"UITEST_TIMEOUT=" + c.Timeout.String(),
		"UITEST_NAV_TIMEOUT=" + c.NavTimeout.String(),
		"UITEST_SLOW_MO=" + c.SlowMo.String(),
		"UITEST_BROWSER=" + c.Browser,
		"UITEST_DRIVER=" + c.Driver,
		"UITEST_REGISTRY=" + c.RegistryPath,
		"UITEST_ARTIFACTS=" + c.ArtifactsDir,
		"UITEST_VIDEO=" + strconv.FormatBool(c.Video),
		"UITEST_CATEGORIES=" + c.Categories.String(),
		"UITEST_ALLOW_SUBMIT=" + strconv.FormatBool(c.AllowSubmit),
		"UITEST_VIEWPORT=" + c.Viewport.String(),
		"UITEST_LOG_LEVEL=" + c.LogLevel.String(),
		"UITEST_CHROMEDRIVER=" + c.ChromeDriver,
		"UITEST_CHROME_BINARY=" + c.ChromeBinary,
	}
}

// NewLogger - builds the shared logger
func NewLogger(level logrus.Level, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

// parser reads typed variables and collects the ones that fail to parse
type parser struct {
	errors []string
}

func (p *parser) fail(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail("%s: %q is not a boolean", key, v)
		return def
	}
	return b
}

// duration accepts Go durations ("10s") or bare milliseconds ("10000")
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail("%s: %q is not a duration", key, v)
		return def
	}
	return d
}

func (p *parser) viewport(key string, def Viewport) Viewport {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	w, h, ok := strings.Cut(strings.ToLower(v), "x")
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if !ok || werr != nil || herr != nil || width <= 0 || height <= 0 {
		p.fail("%s: %q is not WIDTHxHEIGHT", key, v)
		return def
	}
	return Viewport{Width: width, Height: height}
}

func (p *parser) level(key string, def logrus.Level) logrus.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	lvl, err := logrus.ParseLevel(v)
	if err != nil {
		p.fail("%s: %v", key, err)
		return def
	}
	return lvl
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
