package extractor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
	"site_uitest/infrastructure/htmldom"
)

// fakeSource serves fixed candidates and counts from a map keyed by locator
type fakeSource struct {
	candidates []entities.ElementCandidate
	counts     map[string]int
	countErr   map[string]error
	elementErr error

	mu      sync.Mutex
	counted []string
}

func (f *fakeSource) Elements(ctx context.Context, filter interfaces.ElementFilter) ([]entities.ElementCandidate, error) {
	return f.candidates, f.elementErr
}

func (f *fakeSource) Count(ctx context.Context, entry entities.SelectorEntry) (int, error) {
	f.mu.Lock()
	f.counted = append(f.counted, entry.Locator)
	f.mu.Unlock()
	if err := f.countErr[entry.Locator]; err != nil {
		return 0, err
	}
	if n, ok := f.counts[entry.Locator]; ok {
		return n, nil
	}
	return 1, nil
}

func (f *fakeSource) URL() string { return "https://www.bitsight.com/" }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func link(href, text string, attrs ...string) entities.ElementCandidate {
	c := entities.ElementCandidate{Tag: "a", Text: text, Attributes: map[string]string{"href": href}}
	for i := 0; i+1 < len(attrs); i += 2 {
		c.Attributes[attrs[i]] = attrs[i+1]
	}
	return c
}

func names(entries []entities.SelectorEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestIdenticalCandidateLocatorsAreBothOmitted(t *testing.T) {
	src := &fakeSource{candidates: []entities.ElementCandidate{
		link("/demo", "Request Demo", "data-testid", "cta"),
		link("/contact-us", "Contact", "data-testid", "cta"),
		link("https://service.bitsighttech.com/", "Log In"),
	}}

	result, err := New(DefaultHeuristics(), quietLogger()).Extract(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, []string{"log_in_link"}, names(result.Accepted))
	require.Len(t, result.Skipped, 2)
	for _, s := range result.Skipped {
		assert.Equal(t, ReasonAmbiguous, s.Reason)
		assert.Equal(t, "data-testid=cta", s.Locator)
		assert.Equal(t, 2, s.Matches)
	}
	assert.NotContains(t, src.counted, "data-testid=cta")
}

func TestLiveCountMustBeOne(t *testing.T) {
	src := &fakeSource{
		candidates: []entities.ElementCandidate{
			link("/solutions", "Solutions"),
			link("/products", "Products"),
			link("/resources", "Resources"),
		},
		counts:   map[string]int{`a[href="/solutions"]`: 2, `a[href="/products"]`: 0},
		countErr: map[string]error{`a[href="/resources"]`: errors.New("detached frame")},
	}

	result, err := New(DefaultHeuristics(), quietLogger()).Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
	require.Len(t, result.Skipped, 3)
	assert.Equal(t, ReasonNotUnique, result.Skipped[0].Reason)
	assert.Equal(t, 2, result.Skipped[0].Matches)
	assert.Equal(t, ReasonNotUnique, result.Skipped[1].Reason)
	assert.Equal(t, ReasonCountFailed, result.Skipped[2].Reason)
}

func TestCancelledExtractionFails(t *testing.T) {
	src := &fakeSource{candidates: []entities.ElementCandidate{
		link("/solutions", "Solutions"),
		link("/products", "Products"),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultHeuristics(), quietLogger()).Extract(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.counted)
}

func TestNameCollisionsGetSuffixes(t *testing.T) {
	src := &fakeSource{candidates: []entities.ElementCandidate{
		link("/docs/a", "Docs"),
		link("/docs/b", "Docs"),
		link("/docs/c", "Docs"),
	}}

	result, err := New(DefaultHeuristics(), quietLogger()).Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs_link", "docs_link_2", "docs_link_3"}, names(result.Accepted))
}

func TestLocatorPriority(t *testing.T) {
	h := DefaultHeuristics()
	cases := []struct {
		candidate entities.ElementCandidate
		locator   string
		kind      entities.LocatorKind
		name      string
	}{
		{entities.ElementCandidate{Tag: "button", Attributes: map[string]string{"data-testid": "submit-demo", "id": "x"}}, "data-testid=submit-demo", entities.KindAttribute, "submit_demo_button"},
		{entities.ElementCandidate{Tag: "form", ID: "views-exposed-form-search-search-page", Attributes: map[string]string{"id": "views-exposed-form-search-search-page"}}, "#views-exposed-form-search-search-page", entities.KindCSS, "views_exposed_form_search_search_page_form"},
		{entities.ElementCandidate{Tag: "input", ID: "edit-7f3a9c1b", Attributes: map[string]string{"id": "edit-7f3a9c1b", "name": "keys"}}, `input[name="keys"]`, entities.KindCSS, "keys_input"},
		{entities.ElementCandidate{Tag: "nav", Attributes: map[string]string{"aria-label": "Main"}}, `nav[aria-label="Main"]`, entities.KindCSS, "main_nav"},
		{entities.ElementCandidate{Tag: "div", Role: "dialog", Classes: []string{"modal"}}, `div[role="dialog"]`, entities.KindCSS, "dialog"},
		{entities.ElementCandidate{Tag: "div", Classes: []string{"hero-homepage__title"}}, "div.hero-homepage__title", entities.KindCSS, "hero_homepage_title"},
		{entities.ElementCandidate{Tag: "h1", Text: "AI-powered intelligence"}, "h1", entities.KindCSS, "h1_heading"},
	}
	for _, tc := range cases {
		entry, ok := h.propose(tc.candidate)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.locator, entry.Locator, tc.name)
		assert.Equal(t, tc.kind, entry.Kind, tc.name)
		assert.Equal(t, tc.name, entry.Name)
	}

	_, ok := h.propose(entities.ElementCandidate{Tag: "button", Text: "Search"})
	assert.False(t, ok)
}

func TestEnumerationFailureFailsExtraction(t *testing.T) {
	src := &fakeSource{elementErr: errors.New("page crashed")}
	_, err := New(DefaultHeuristics(), quietLogger()).Extract(context.Background(), src)
	assert.Error(t, err)
}

func TestExtractFromSavedHTML(t *testing.T) {
	src, err := htmldom.Open("testdata/home.html", "https://www.bitsight.com/")
	require.NoError(t, err)

	result, err := New(DefaultHeuristics(), quietLogger()).Extract(context.Background(), src)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"visually_hidden_focusable_link",
		"header",
		"main_nav",
		"solutions_link",
		"products_link",
		"resources_link",
		"log_in_link",
		"request_demo_link",
		"h1_heading",
		"see_exposure_management_link",
		"see_threat_intelligence_link",
		"views_exposed_form_search_search_page_form",
		"keys_input",
		"contact_us_link",
		"footer",
		"linkedin_link",
	}, names(result.Accepted))

	reasons := map[string]int{}
	for _, s := range result.Skipped {
		reasons[s.Reason]++
	}
	assert.Equal(t, map[string]int{ReasonAmbiguous: 2, ReasonNoStableLocator: 1}, reasons)

	reg, err := registry.FromEntries(result.Accepted)
	require.NoError(t, err)
	login, err := reg.Resolve("log_in_link")
	require.NoError(t, err)
	assert.Equal(t, `a[href="https://service.bitsighttech.com/"]`, login.Locator)
}

func TestWritePolicies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	x := New(DefaultHeuristics(), quietLogger())

	first := &Result{URL: "https://www.bitsight.com/", Accepted: []entities.SelectorEntry{
		{Name: "header", Locator: "header", Kind: entities.KindCSS},
		{Name: "legacy_banner", Locator: ".banner", Kind: entities.KindCSS},
	}}
	changes, err := x.Write(first, path, PolicyReplace)
	require.NoError(t, err)
	assert.Len(t, changes.Added, 2)

	second := &Result{URL: "https://www.bitsight.com/", Accepted: []entities.SelectorEntry{
		{Name: "header", Locator: "header.site-header", Kind: entities.KindCSS},
		{Name: "footer", Locator: "footer", Kind: entities.KindCSS},
	}}

	changes, err = x.Write(second, path, PolicyMerge)
	require.NoError(t, err)
	assert.Len(t, changes.Added, 1)
	assert.Len(t, changes.Changed, 1)
	assert.Empty(t, changes.Removed)
	merged, err := registry.Load(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"header", "legacy_banner", "footer"}, merged.Names())

	changes, err = x.Write(second, path, PolicyReplace)
	require.NoError(t, err)
	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "legacy_banner", changes.Removed[0].Name)
	replaced, err := registry.Load(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"header", "footer"}, replaced.Names())
}

func TestWriteOverMalformedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- {name: a}\n"), 0644))
	x := New(DefaultHeuristics(), quietLogger())
	result := &Result{Accepted: []entities.SelectorEntry{{Name: "header", Locator: "header", Kind: entities.KindCSS}}}

	_, err := x.Write(result, path, PolicyMerge)
	var malformed *entities.MalformedRegistryError
	require.ErrorAs(t, err, &malformed)

	_, err = x.Write(result, path, PolicyReplace)
	require.NoError(t, err)
}

func TestDescriptionSurvivesJSONSnapshot(t *testing.T) {
	c := entities.ElementCandidate{Tag: "a", Text: strings.Repeat("é", 59) + "€ and more"}
	desc := describe(c)
	require.True(t, utf8.ValidString(desc))
	assert.True(t, strings.HasSuffix(desc, `€..."`), desc)

	reg := registry.New()
	_, err := reg.Register("long_link", "a[href='/x']", entities.KindCSS, desc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, reg.Save(path, registry.Meta{}))

	loaded, err := registry.Load(path)
	require.NoError(t, err)
	entry, err := loaded.Resolve("long_link")
	require.NoError(t, err)
	assert.Equal(t, desc, entry.Description)
}

func TestParseMergePolicy(t *testing.T) {
	p, err := ParseMergePolicy("merge")
	require.NoError(t, err)
	assert.Equal(t, PolicyMerge, p)
	_, err = ParseMergePolicy("append")
	assert.Error(t, err)
}
