// Package pages contains the page objects: per-page facades that turn
// semantic actions into registry lookups plus exactly one browser primitive.
package pages

import (
	"context"
	"strings"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
)

// BasePage holds what every page object needs: the driver for one browser
// page, the registry slice the page binds, the site base URL and an optional
// action guard. It is not safe for concurrent use, like the page it drives.
type BasePage struct {
	driver    interfaces.PageDriver
	selectors *registry.Registry
	baseURL   string
	guard     interfaces.ActionGuard
}

// NewBasePage - binds a page object to a driver. guard may be nil.
func NewBasePage(driver interfaces.PageDriver, selectors *registry.Registry, baseURL string, guard interfaces.ActionGuard) *BasePage {
	return &BasePage{
		driver:    driver,
		selectors: selectors,
		baseURL:   strings.TrimRight(baseURL, "/"),
		guard:     guard,
	}
}

// Selectors - the registry slice this page resolves names against
func (p *BasePage) Selectors() *registry.Registry {
	return p.selectors
}

// Driver - the underlying primitives
func (p *BasePage) Driver() interfaces.PageDriver {
	return p.driver
}

// URL - absolute URL for a site path
func (p *BasePage) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return p.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Open - navigates to path and fails with NavigationError on a transport
// failure or an error status
func (p *BasePage) Open(ctx context.Context, path string) error {
	url := p.URL(path)
	status, err := p.Load(ctx, path)
	if err != nil {
		return err
	}
	if status >= 400 {
		return &entities.NavigationError{URL: url, Status: status}
	}
	return nil
}

// Load - navigates to path and returns the response status without judging
// it, for tests that expect error pages
func (p *BasePage) Load(ctx context.Context, path string) (int, error) {
	url := p.URL(path)
	if err := p.check(ctx, entities.Action{Primitive: entities.PrimitiveNavigate, URL: url}); err != nil {
		return 0, err
	}
	return p.driver.Navigate(ctx, url)
}

// Click - resolves name and clicks the element
func (p *BasePage) Click(ctx context.Context, name string) error {
	entry, err := p.selectors.Resolve(name)
	if err != nil {
		return err
	}
	if err := p.check(ctx, entities.Action{Primitive: entities.PrimitiveClick, Entry: entry}); err != nil {
		return err
	}
	return p.driver.Click(ctx, entry)
}

// Text - resolves name and reads the element's text, trimmed
func (p *BasePage) Text(ctx context.Context, name string) (string, error) {
	entry, err := p.selectors.Resolve(name)
	if err != nil {
		return "", err
	}
	text, err := p.driver.ReadText(ctx, entry)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Visible - resolves name and reports whether the element becomes visible
// within the bounded wait
func (p *BasePage) Visible(ctx context.Context, name string) (bool, error) {
	entry, err := p.selectors.Resolve(name)
	if err != nil {
		return false, err
	}
	return p.driver.IsVisible(ctx, entry)
}

// Attribute - resolves name and reads one attribute of the element
func (p *BasePage) Attribute(ctx context.Context, name, attr string) (string, error) {
	entry, err := p.selectors.Resolve(name)
	if err != nil {
		return "", err
	}
	return p.driver.ReadAttribute(ctx, entry, attr)
}

// CurrentURL - URL of the loaded document
func (p *BasePage) CurrentURL() string {
	return p.driver.CurrentURL()
}

// RequireVisible - returns an ElementNotReadyError naming the first element
// that is not visible
func (p *BasePage) RequireVisible(ctx context.Context, names ...string) error {
	for _, name := range names {
		visible, err := p.Visible(ctx, name)
		if err != nil {
			return err
		}
		if !visible {
			entry, _ := p.selectors.Resolve(name)
			return &entities.ElementNotReadyError{Name: name, Locator: entry.Locator}
		}
	}
	return nil
}

func (p *BasePage) check(ctx context.Context, action entities.Action) error {
	if p.guard == nil {
		return nil
	}
	return p.guard.Check(ctx, action)
}
