package suite

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"site_uitest/application/pages"
	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
	"site_uitest/infrastructure/browser"
	"site_uitest/infrastructure/config"
	"site_uitest/infrastructure/htmldom"
)

// Options adjusts the browser a test gets
type Options struct {
	Tab    browser.TabOptions
	Engine string // empty means the configured engine
}

// Fixture is one test's view of the site: a fresh browser context, a driver
// over it and the page objects bound to the shared registry
type Fixture struct {
	Ctx      context.Context
	Config   *config.Config
	Registry *registry.Registry
	Driver   interfaces.PageDriver
	Home     *pages.HomePage
	Products *pages.ProductsPage
	Search   *pages.SearchPage
	Log      *logrus.Entry

	tab *browser.Tab // nil on the selenium driver
}

// screenshotter is implemented by every driver backend
type screenshotter interface {
	Screenshot(path string) error
}

// Setup - a fixture on the configured engine
func (h *Harness) Setup(t *testing.T, categories ...entities.Category) *Fixture {
	t.Helper()
	return h.SetupWith(t, Options{}, categories...)
}

// SetupWith - skips unless the categories are selected, then opens a fresh
// context for the test. Screenshots and videos of failed tests are kept in
// the artifact store.
func (h *Harness) SetupWith(t *testing.T, opts Options, categories ...entities.Category) *Fixture {
	t.Helper()
	cfg := h.prepare(t, categories...)

	engine := opts.Engine
	if engine == "" {
		engine = cfg.Browser
	}
	log := h.logger.WithFields(logrus.Fields{"test": t.Name(), "browser": engine})

	var (
		driver interfaces.PageDriver
		shot   screenshotter
		tab    *browser.Tab
		closer func() (string, error)
	)
	if cfg.Driver == config.DriverSelenium && opts.Engine == "" {
		sd, err := browser.NewSeleniumDriver(cfg, h.logger)
		if err != nil {
			t.Skip("Selenium not available:", err)
		}
		driver, shot = sd, sd
		closer = func() (string, error) { return "", sd.Close() }
	} else {
		session, err := h.session(engine)
		if err != nil {
			t.Skip("Playwright not available:", err)
		}
		if cfg.Video {
			opts.Tab.VideoDir = filepath.Join(cfg.ArtifactsDir, "videos")
		}
		tab, err = session.NewTab(opts.Tab)
		if err != nil {
			t.Fatalf("Failed to open tab: %v", err)
		}
		driver, shot = tab.Driver(), tab
		closer = tab.Close
	}

	ctx, cancel := context.WithTimeout(context.Background(), testBudget(cfg))
	t.Cleanup(func() {
		cancel()
		h.capture(t, shot, closer, log)
	})

	guard := h.guard
	return &Fixture{
		Ctx:      ctx,
		Config:   cfg,
		Registry: h.registry,
		Driver:   driver,
		Home:     pages.NewHomePage(driver, h.registry, cfg.BaseURL, guard),
		Products: pages.NewProductsPage(driver, h.registry, cfg.BaseURL, guard),
		Search:   pages.NewSearchPage(driver, h.registry, cfg.BaseURL, guard),
		Log:      log,
		tab:      tab,
	}
}

// SetupHTTP - skips unless the categories are selected; for tests that only
// need plain HTTP requests against the site
func (h *Harness) SetupHTTP(t *testing.T, categories ...entities.Category) (context.Context, *config.Config) {
	t.Helper()
	cfg := h.prepare(t, categories...)
	ctx, cancel := context.WithTimeout(context.Background(), testBudget(cfg))
	t.Cleanup(cancel)
	return ctx, cfg
}

// prepare holds the gating shared by every setup
func (h *Harness) prepare(t *testing.T, categories ...entities.Category) *config.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	if err := h.load(); err != nil {
		t.Fatalf("Failed to prepare suite: %v", err)
	}
	if !h.cfg.Categories.Selects(categories...) {
		t.Skipf("Categories %v not selected (%s)", categories, h.cfg.Categories)
	}
	t.Parallel()
	return h.cfg
}

// capture saves a screenshot and the video of a failed test, then closes
// the browser context
func (h *Harness) capture(t *testing.T, shot screenshotter, closer func() (string, error), log *logrus.Entry) {
	if t.Failed() {
		path, err := h.store.PathFor(t.Name(), "failure", "png")
		if err == nil {
			err = shot.Screenshot(path)
		}
		if err == nil {
			err = h.store.Record(t.Name(), path)
		}
		if err != nil {
			log.Warnf("Failed to save screenshot: %v", err)
		} else {
			log.Infof("Screenshot saved: %s", path)
		}
	}

	video, err := closer()
	if err != nil {
		log.Warnf("Failed to close browser context: %v", err)
	}
	if video == "" {
		return
	}
	if !t.Failed() {
		_ = os.Remove(video)
		return
	}
	dest, err := h.store.PathFor(t.Name(), "video", filepath.Ext(video))
	if err == nil {
		err = os.Rename(video, dest)
	}
	if err == nil {
		err = h.store.Record(t.Name(), dest)
	}
	if err != nil {
		log.Warnf("Failed to keep video: %v", err)
	}
}

// testBudget bounds a whole test: a few page loads and a handful of waits
func testBudget(cfg *config.Config) time.Duration {
	return 3*cfg.NavTimeout + 10*cfg.Timeout
}

// Page - the raw Playwright page for checks the page objects do not cover.
// Skips on the selenium driver.
func (f *Fixture) Page(t *testing.T) playwright.Page {
	t.Helper()
	if f.tab == nil {
		t.Skip("Needs the playwright driver")
	}
	return f.tab.Page()
}

// Locator - a Playwright locator for a registry name
func (f *Fixture) Locator(t *testing.T, name string) playwright.Locator {
	t.Helper()
	page := f.Page(t)
	entry, err := f.Registry.Resolve(name)
	if err != nil {
		t.Fatal(err)
	}
	sel, err := browser.Selector(entry)
	if err != nil {
		t.Fatal(err)
	}
	return page.Locator(sel)
}

// DOM - the loaded page as a DOM source
func (f *Fixture) DOM(t *testing.T) *browser.DOMSource {
	t.Helper()
	if f.tab == nil {
		t.Skip("Needs the playwright driver")
	}
	return f.tab.DOM()
}

// URL - joins path onto the base URL
func (f *Fixture) URL(path string) string {
	return f.Config.URL(path)
}

// Static - fetches path over plain HTTP and parses it
func Static(ctx context.Context, cfg *config.Config, path string) (*htmldom.Source, int, error) {
	client := &http.Client{Timeout: cfg.NavTimeout}
	return htmldom.Fetch(ctx, client, cfg.URL(path))
}
