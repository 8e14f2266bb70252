package pages

import (
	"context"
	"net/url"

	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
)

// PathSearch is the site search results page
const PathSearch = "/search"

// SearchPage is the site search results page. Queries are issued through the
// URL so no form is submitted.
type SearchPage struct {
	*BasePage
}

// NewSearchPage - binds the search page names from reg
func NewSearchPage(driver interfaces.PageDriver, reg *registry.Registry, baseURL string, guard interfaces.ActionGuard) *SearchPage {
	return &SearchPage{BasePage: NewBasePage(driver, reg.Subset(SearchSelectors...), baseURL, guard)}
}

// Search - loads the results page for query
func (s *SearchPage) Search(ctx context.Context, query string) error {
	return s.Open(ctx, PathSearch+"?"+url.Values{"keys": {query}}.Encode())
}

// HasResults - whether the results list is shown
func (s *SearchPage) HasResults(ctx context.Context) (bool, error) {
	return s.Visible(ctx, SelectorSearchResults)
}

// QueryValue - current value of the search box
func (s *SearchPage) QueryValue(ctx context.Context) (string, error) {
	return s.Attribute(ctx, SelectorSearchInput, "value")
}
