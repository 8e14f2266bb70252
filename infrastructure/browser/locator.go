package browser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/tebeka/selenium"

	"site_uitest/domain/entities"
)

// Selector - renders an entry in Playwright's selector syntax
func Selector(entry entities.SelectorEntry) (string, error) {
	switch entry.Kind {
	case entities.KindCSS:
		return entry.Locator, nil
	case entities.KindXPath:
		return "xpath=" + entry.Locator, nil
	case entities.KindAttribute:
		css, ok := entry.AsCSS()
		if !ok {
			return "", fmt.Errorf("malformed attribute locator %q", entry.Locator)
		}
		return css, nil
	case entities.KindText:
		return "text=" + strings.TrimSpace(entry.Locator), nil
	}
	return "", fmt.Errorf("unsupported locator kind %q", entry.Kind)
}

// errUnsupportedLocator - the entry cannot be expressed as a WebDriver lookup
var errUnsupportedLocator = errors.New("locator not supported by WebDriver")

var playwrightOnly = regexp.MustCompile(`:(has-text|text|text-is|text-matches|visible|nth-match)\(|:visible\b|>>`)

// by - renders an entry as a WebDriver lookup strategy
func by(entry entities.SelectorEntry) (string, string, error) {
	if css, ok := entry.AsCSS(); ok {
		if playwrightOnly.MatchString(css) {
			return "", "", fmt.Errorf("%w: %q uses Playwright-only selector syntax", errUnsupportedLocator, css)
		}
		return selenium.ByCSSSelector, css, nil
	}
	if expr, ok := entry.AsXPath(); ok {
		return selenium.ByXPATH, expr, nil
	}
	return "", "", fmt.Errorf("%w: unsupported locator kind %q", errUnsupportedLocator, entry.Kind)
}

// notReady - wraps a failed wait for entry
func notReady(entry entities.SelectorEntry, waited time.Duration, err error) error {
	return &entities.ElementNotReadyError{
		Name:    entry.Name,
		Locator: entry.Locator,
		Waited:  waited,
		Err:     err,
	}
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
