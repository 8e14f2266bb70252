package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Category is a marker used to select subsets of the suite
type Category string

const (
	CategorySmoke         Category = "smoke"
	CategoryRegression    Category = "regression"
	CategoryNavigation    Category = "navigation"
	CategoryDropdown      Category = "dropdown"
	CategorySearch        Category = "search"
	CategoryForms         Category = "forms"
	CategoryContent       Category = "content"
	CategoryData          Category = "data"
	CategoryMobile        Category = "mobile"
	CategoryCrossBrowser  Category = "cross_browser"
	CategoryPerformance   Category = "performance"
	CategoryErrorHandling Category = "error_handling"
	CategoryUsability     Category = "usability"
	CategoryUI            Category = "ui"
	CategoryStructure     Category = "structure"
	CategorySecurity      Category = "security"
	CategoryE2E           Category = "e2e"
	CategorySlow          Category = "slow"
	CategoryReal          Category = "real"
)

var knownCategories = map[Category]string{
	CategorySmoke:         "quick checks of critical functionality",
	CategoryRegression:    "full regression coverage",
	CategoryNavigation:    "menus and links",
	CategoryDropdown:      "dropdown menus",
	CategorySearch:        "site search",
	CategoryForms:         "form presence and fields",
	CategoryContent:       "page content and metadata",
	CategoryData:          "data driven checks",
	CategoryMobile:        "mobile and tablet viewports",
	CategoryCrossBrowser:  "chromium, firefox and webkit",
	CategoryPerformance:   "load timings",
	CategoryErrorHandling: "404 pages and broken resources",
	CategoryUsability:     "keyboard and accessibility",
	CategoryUI:            "visual structure",
	CategoryStructure:     "document structure",
	CategorySecurity:      "transport and headers",
	CategoryE2E:           "end to end journeys",
	CategorySlow:          "long running",
	CategoryReal:          "runs against inspected live selectors",
}

// KnownCategories - every category with its description
func KnownCategories() map[Category]string {
	out := make(map[Category]string, len(knownCategories))
	for k, v := range knownCategories {
		out[k] = v
	}
	return out
}

// CategorySet is a selection of categories. The empty set selects everything.
type CategorySet map[Category]struct{}

// ParseCategories - parses a comma or space separated list of categories
func ParseCategories(s string) (CategorySet, error) {
	set := CategorySet{}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, f := range fields {
		c := Category(strings.ToLower(f))
		if _, ok := knownCategories[c]; !ok {
			return nil, fmt.Errorf("unknown category %q", f)
		}
		set[c] = struct{}{}
	}
	return set, nil
}

// Selects - true when any of the given categories is selected
func (s CategorySet) Selects(categories ...Category) bool {
	if len(s) == 0 {
		return true
	}
	for _, c := range categories {
		if _, ok := s[c]; ok {
			return true
		}
	}
	return false
}

// String - comma separated, sorted
func (s CategorySet) String() string {
	names := make([]string, 0, len(s))
	for c := range s {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
