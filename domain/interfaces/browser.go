package interfaces

import (
	"context"

	"site_uitest/domain/entities"
)

// PageDriver defines the browser primitives a page object may issue.
// Every call is bounded by the driver's wait timeout.
type PageDriver interface {
	// Navigate loads url and returns the main response status
	Navigate(ctx context.Context, url string) (int, error)

	// Click waits for the element to be visible and clicks it
	Click(ctx context.Context, entry entities.SelectorEntry) error

	// ReadText returns the element's text content
	ReadText(ctx context.Context, entry entities.SelectorEntry) (string, error)

	// IsVisible reports whether the element becomes visible within the wait
	IsVisible(ctx context.Context, entry entities.SelectorEntry) (bool, error)

	// ReadAttribute returns an attribute of the element
	ReadAttribute(ctx context.Context, entry entities.SelectorEntry, attr string) (string, error)

	// CurrentURL returns the URL of the loaded document
	CurrentURL() string
}

// DOMSource enumerates candidate elements and counts locator matches for the
// extraction utility
type DOMSource interface {
	// Elements lists candidate elements that pass the filter
	Elements(ctx context.Context, filter ElementFilter) ([]entities.ElementCandidate, error)

	// Count returns how many elements the entry matches
	Count(ctx context.Context, entry entities.SelectorEntry) (int, error)

	// URL identifies the document being inspected
	URL() string
}

// ElementFilter narrows which elements a DOMSource reports
type ElementFilter struct {
	Tags  []string
	Roles []string
}
