package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
	"site_uitest/infrastructure/config"
)

const pollInterval = 100 * time.Millisecond

// errWaitTimeout is returned by poll when the condition never held
var errWaitTimeout = errors.New("wait timed out")

// SeleniumDriver implements PageDriver over ChromeDriver
type SeleniumDriver struct {
	wd         selenium.WebDriver
	service    *selenium.Service
	timeout    time.Duration
	navTimeout time.Duration
	logger     *logrus.Logger
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("chromedriver not found; install it or set UITEST_CHROMEDRIVER")
}

// findChromeBinary - finds Chrome/Chromium; empty lets ChromeDriver decide
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// freePort - asks the kernel for an unused local port so parallel tests can
// each run their own ChromeDriver
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// NewSeleniumDriver - starts ChromeDriver and opens a fresh Chrome session
func NewSeleniumDriver(cfg *config.Config, logger *logrus.Logger) (*SeleniumDriver, error) {
	driverPath, err := findChromeDriver(cfg.ChromeDriver)
	if err != nil {
		return nil, err
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to pick a chromedriver port: %w", err)
	}
	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			fmt.Sprintf("--window-size=%d,%d", cfg.Viewport.Width, cfg.Viewport.Height),
		},
	}
	if cfg.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}
	if binary := findChromeBinary(cfg.ChromeBinary); binary != "" {
		logger.Infof("Using Chrome binary at: %s", binary)
		chromeCaps.Path = binary
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		_ = service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome not found, set UITEST_CHROME_BINARY: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}
	if err := wd.SetPageLoadTimeout(cfg.NavTimeout); err != nil {
		logger.Warnf("Failed to set page load timeout: %v", err)
	}

	return &SeleniumDriver{
		wd:         wd,
		service:    service,
		timeout:    cfg.Timeout,
		navTimeout: cfg.NavTimeout,
		logger:     logger,
	}, nil
}

// Navigate - loads url; the status comes from the Navigation Timing entry
// and is 0 when the browser does not expose it
func (s *SeleniumDriver) Navigate(ctx context.Context, url string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.logger.WithField("url", url).Debug("Navigating")
	if err := s.wd.Get(url); err != nil {
		return 0, &entities.NavigationError{URL: url, Err: err}
	}

	v, err := s.wd.ExecuteScript(`
		const nav = performance.getEntriesByType('navigation')[0];
		return nav && nav.responseStatus ? nav.responseStatus : 0;
	`, nil)
	if err != nil {
		return 0, nil
	}
	if status, ok := v.(float64); ok {
		return int(status), nil
	}
	return 0, nil
}

// Click - waits for the element to be displayed, scrolls it into view and
// clicks it
func (s *SeleniumDriver) Click(ctx context.Context, entry entities.SelectorEntry) error {
	el, err := s.ready(ctx, entry, true)
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"name": entry.Name, "locator": entry.Locator}).Debug("Clicking")

	if _, err := s.wd.ExecuteScript(`arguments[0].scrollIntoView({block: 'center'});`, []interface{}{el}); err != nil {
		s.logger.Warnf("Failed to scroll to element: %v", err)
	}
	if err := el.Click(); err != nil {
		return notReady(entry, s.timeout, err)
	}
	return nil
}

// ReadText - text of the first match. WebDriver reports only rendered text,
// so hidden elements read as empty.
func (s *SeleniumDriver) ReadText(ctx context.Context, entry entities.SelectorEntry) (string, error) {
	el, err := s.ready(ctx, entry, false)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// IsVisible - false, not an error, when the element stays hidden for the
// whole wait. A locator WebDriver cannot run is still an error.
func (s *SeleniumDriver) IsVisible(ctx context.Context, entry entities.SelectorEntry) (bool, error) {
	_, err := s.ready(ctx, entry, true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errWaitTimeout) {
		return false, nil
	}
	return false, err
}

// ReadAttribute - attribute of the first match
func (s *SeleniumDriver) ReadAttribute(ctx context.Context, entry entities.SelectorEntry, attr string) (string, error) {
	el, err := s.ready(ctx, entry, false)
	if err != nil {
		return "", err
	}
	return el.GetAttribute(attr)
}

// CurrentURL - URL of the loaded document
func (s *SeleniumDriver) CurrentURL() string {
	url, err := s.wd.CurrentURL()
	if err != nil {
		return ""
	}
	return url
}

// Screenshot - writes a PNG of the viewport to path
func (s *SeleniumDriver) Screenshot(path string) error {
	data, err := s.wd.Screenshot()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumDriver) Close() error {
	if s.wd != nil {
		_ = s.wd.Quit()
	}
	if s.service != nil {
		return s.service.Stop()
	}
	return nil
}

// ready - polls until entry is present (and displayed when visible is set)
func (s *SeleniumDriver) ready(ctx context.Context, entry entities.SelectorEntry, visible bool) (selenium.WebElement, error) {
	strategy, value, err := by(entry)
	if err != nil {
		// nothing was waited for; the entry can never be found this way
		return nil, notReady(entry, 0, err)
	}

	wait := bounded(ctx, s.timeout)
	var found selenium.WebElement
	err = poll(ctx, wait, func() (bool, error) {
		el, err := s.wd.FindElement(strategy, value)
		if err != nil {
			return false, nil
		}
		if visible {
			if shown, err := el.IsDisplayed(); err != nil || !shown {
				return false, nil
			}
		}
		found = el
		return true, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, notReady(entry, wait, err)
	}
	return found, nil
}

// poll - evaluates cond every pollInterval until it holds, fails, the
// timeout elapses or ctx is done
func poll(ctx context.Context, timeout time.Duration, cond func() (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errWaitTimeout
		case <-tick.C:
		}
	}
}

var _ interfaces.PageDriver = (*SeleniumDriver)(nil)
