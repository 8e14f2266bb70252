// Package browser drives real browsers: Playwright for all three engines and
// Selenium/ChromeDriver as an alternative Chromium backend.
package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"site_uitest/infrastructure/config"
)

// Session owns one Playwright driver process and one launched browser.
// Tabs opened from it each get their own browser context.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	cfg     *config.Config
	logger  *logrus.Logger

	mu     sync.Mutex
	closed bool
}

// Launch - starts Playwright and launches the configured engine
func Launch(cfg *config.Config, logger *logrus.Logger) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	engine, err := engineFor(pw, cfg.Browser)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	options := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.SlowMo > 0 {
		options.SlowMo = ms(cfg.SlowMo)
	}
	if cfg.Browser == config.BrowserChromium {
		options.Args = []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		}
	}

	browser, err := engine.Launch(options)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Browser, err)
	}
	logger.Infof("Launched %s %s (headless=%t)", cfg.Browser, browser.Version(), cfg.Headless)

	return &Session{pw: pw, browser: browser, cfg: cfg, logger: logger}, nil
}

func engineFor(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case config.BrowserChromium:
		return pw.Chromium, nil
	case config.BrowserFirefox:
		return pw.Firefox, nil
	case config.BrowserWebKit:
		return pw.WebKit, nil
	}
	return nil, fmt.Errorf("unknown browser %q", name)
}

// Browser - name of the launched engine
func (s *Session) Browser() string {
	return s.cfg.Browser
}

// TabOptions customizes the context a tab is opened in
type TabOptions struct {
	Viewport  config.Viewport // zero means the configured viewport
	Mobile    bool
	UserAgent string
	VideoDir  string // record a video into this directory when set
}

// Tab is a page in its own browser context
type Tab struct {
	context playwright.BrowserContext
	page    playwright.Page
	driver  *PlaywrightDriver
	logger  *logrus.Logger
	video   bool
}

// NewTab - opens a fresh context and page
func (s *Session) NewTab(opts TabOptions) (*Tab, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("browser session is closed")
	}

	viewport := opts.Viewport
	if viewport.Width == 0 || viewport.Height == 0 {
		viewport = s.cfg.Viewport
	}
	size := &playwright.Size{Width: viewport.Width, Height: viewport.Height}

	options := playwright.BrowserNewContextOptions{
		Viewport:          size,
		IgnoreHttpsErrors: playwright.Bool(true),
		JavaScriptEnabled: playwright.Bool(true),
	}
	if opts.UserAgent != "" {
		options.UserAgent = playwright.String(opts.UserAgent)
	}
	// firefox has no mobile emulation
	if opts.Mobile && s.cfg.Browser != config.BrowserFirefox {
		options.IsMobile = playwright.Bool(true)
		options.HasTouch = playwright.Bool(true)
	}
	if opts.VideoDir != "" {
		options.RecordVideo = &playwright.RecordVideo{Dir: opts.VideoDir, Size: size}
	}

	bctx, err := s.browser.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	bctx.SetDefaultTimeout(float64(s.cfg.Timeout.Milliseconds()))
	bctx.SetDefaultNavigationTimeout(float64(s.cfg.NavTimeout.Milliseconds()))

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	// a stray alert or confirm would otherwise block every later primitive
	page.OnDialog(func(dialog playwright.Dialog) {
		s.logger.Debugf("Dismissing %s dialog: %s", dialog.Type(), dialog.Message())
		_ = dialog.Dismiss()
	})

	return &Tab{
		context: bctx,
		page:    page,
		driver:  NewPlaywrightDriver(page, s.cfg.Timeout, s.cfg.NavTimeout, s.logger),
		logger:  s.logger,
		video:   opts.VideoDir != "",
	}, nil
}

// Close - closes the browser and stops Playwright
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []string
	if err := s.browser.Close(); err != nil && !isClosedErr(err) {
		errs = append(errs, fmt.Sprintf("failed to close browser: %v", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to stop playwright: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Page - the tab's Playwright page
func (t *Tab) Page() playwright.Page {
	return t.page
}

// Driver - the tab's PageDriver
func (t *Tab) Driver() *PlaywrightDriver {
	return t.driver
}

// DOM - the tab's page as an extraction source
func (t *Tab) DOM() *DOMSource {
	return NewDOMSource(t.page)
}

// Screenshot - writes a full-page PNG to path
func (t *Tab) Screenshot(path string) error {
	_, err := t.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// Close - closes the context; when a video was recorded its path is returned
func (t *Tab) Close() (string, error) {
	var video string
	if t.video {
		if p, err := t.page.Video().Path(); err == nil {
			video = p
		}
	}
	if err := t.context.Close(); err != nil && !isClosedErr(err) {
		return video, fmt.Errorf("failed to close context: %w", err)
	}
	return video, nil
}

func isClosedErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "closed") || strings.Contains(msg, "Target closed")
}
