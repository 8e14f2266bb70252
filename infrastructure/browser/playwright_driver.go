package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
)

// PlaywrightDriver implements PageDriver over a single Playwright page
type PlaywrightDriver struct {
	page       playwright.Page
	timeout    time.Duration
	navTimeout time.Duration
	logger     *logrus.Logger
}

// NewPlaywrightDriver - wraps page; timeout bounds element waits, navTimeout page loads
func NewPlaywrightDriver(page playwright.Page, timeout, navTimeout time.Duration, logger *logrus.Logger) *PlaywrightDriver {
	return &PlaywrightDriver{
		page:       page,
		timeout:    timeout,
		navTimeout: navTimeout,
		logger:     logger,
	}
}

// Page - the underlying Playwright page
func (d *PlaywrightDriver) Page() playwright.Page {
	return d.page
}

// Navigate - loads url and waits for DOMContentLoaded
func (d *PlaywrightDriver) Navigate(ctx context.Context, url string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.logger.WithField("url", url).Debug("Navigating")

	resp, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(bounded(ctx, d.navTimeout)),
	})
	if err != nil {
		return 0, &entities.NavigationError{URL: url, Err: err}
	}
	// same-document navigations have no response
	if resp == nil {
		return 0, nil
	}
	return resp.Status(), nil
}

// Click - waits for the element to be visible, then clicks it
func (d *PlaywrightDriver) Click(ctx context.Context, entry entities.SelectorEntry) error {
	loc, wait, err := d.ready(ctx, entry, playwright.WaitForSelectorStateVisible)
	if err != nil {
		return err
	}
	d.logger.WithFields(logrus.Fields{"name": entry.Name, "locator": entry.Locator}).Debug("Clicking")

	if err := loc.Click(playwright.LocatorClickOptions{Timeout: ms(wait)}); err != nil {
		return notReady(entry, wait, err)
	}
	return nil
}

// ReadText - text content of the first match, which need not be visible
func (d *PlaywrightDriver) ReadText(ctx context.Context, entry entities.SelectorEntry) (string, error) {
	loc, wait, err := d.ready(ctx, entry, playwright.WaitForSelectorStateAttached)
	if err != nil {
		return "", err
	}
	text, err := loc.TextContent(playwright.LocatorTextContentOptions{Timeout: ms(wait)})
	if err != nil {
		return "", notReady(entry, wait, err)
	}
	return text, nil
}

// IsVisible - false, not an error, when the element stays hidden for the
// whole wait
func (d *PlaywrightDriver) IsVisible(ctx context.Context, entry entities.SelectorEntry) (bool, error) {
	_, _, err := d.ready(ctx, entry, playwright.WaitForSelectorStateVisible)
	if err == nil {
		return true, nil
	}
	var notReadyErr *entities.ElementNotReadyError
	if errors.As(err, &notReadyErr) {
		return false, nil
	}
	return false, err
}

// ReadAttribute - attribute of the first match
func (d *PlaywrightDriver) ReadAttribute(ctx context.Context, entry entities.SelectorEntry, attr string) (string, error) {
	loc, wait, err := d.ready(ctx, entry, playwright.WaitForSelectorStateAttached)
	if err != nil {
		return "", err
	}
	value, err := loc.GetAttribute(attr, playwright.LocatorGetAttributeOptions{Timeout: ms(wait)})
	if err != nil {
		return "", notReady(entry, wait, err)
	}
	return value, nil
}

// CurrentURL - URL of the loaded document
func (d *PlaywrightDriver) CurrentURL() string {
	return d.page.URL()
}

// ready - locates the first match of entry and waits for state
func (d *PlaywrightDriver) ready(ctx context.Context, entry entities.SelectorEntry, state *playwright.WaitForSelectorState) (playwright.Locator, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	selector, err := Selector(entry)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot locate %s: %w", entry.Name, err)
	}

	wait := bounded(ctx, d.timeout)
	loc := d.page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{State: state, Timeout: ms(wait)}); err != nil {
		return nil, wait, notReady(entry, wait, err)
	}
	return loc, wait, nil
}

// bounded - d, shortened to the context deadline when that comes first
func bounded(ctx context.Context, d time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			if left < time.Millisecond {
				return time.Millisecond
			}
			return left
		}
	}
	return d
}

var _ interfaces.PageDriver = (*PlaywrightDriver)(nil)
