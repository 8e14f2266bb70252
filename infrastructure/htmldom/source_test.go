package htmldom

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
)

func openHome(t *testing.T) *Source {
	t.Helper()
	src, err := Open("testdata/home.html", "https://www.bitsight.com/")
	require.NoError(t, err)
	return src
}

func TestElementsSkipsHidden(t *testing.T) {
	src := openHome(t)
	elements, err := src.Elements(context.Background(), interfaces.ElementFilter{Tags: []string{"a", "input"}})
	require.NoError(t, err)

	for _, e := range elements {
		assert.NotEqual(t, "/hidden-promo", e.Attr("href"))
		assert.NotEqual(t, "hidden", e.Attr("type"))
	}

	var login *entities.ElementCandidate
	for i := range elements {
		if elements[i].Text == "Log In" {
			login = &elements[i]
		}
	}
	require.NotNil(t, login)
	assert.Equal(t, "a", login.Tag)
	assert.Equal(t, "https://service.bitsighttech.com/", login.Attr("href"))
}

func TestElementsByRole(t *testing.T) {
	src, err := New(strings.NewReader(`<div role="dialog" class="modal">x</div><div>y</div>`), "mem://")
	require.NoError(t, err)

	elements, err := src.Elements(context.Background(), interfaces.ElementFilter{Roles: []string{"dialog"}})
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "dialog", elements[0].Role)
	assert.Equal(t, []string{"modal"}, elements[0].Classes)
}

func TestCount(t *testing.T) {
	src := openHome(t)
	ctx := context.Background()

	cases := []struct {
		entry entities.SelectorEntry
		want  int
	}{
		{entities.SelectorEntry{Name: "login_button", Locator: "a[href='https://service.bitsighttech.com/']", Kind: entities.KindCSS}, 1},
		{entities.SelectorEntry{Name: "menu_link", Locator: ".main-menu-block__item-link", Kind: entities.KindCSS}, 3},
		{entities.SelectorEntry{Name: "resources_menu_link", Locator: `a.main-menu-block__item-link:has-text("Resources")`, Kind: entities.KindCSS}, 1},
		{entities.SelectorEntry{Name: "footer", Locator: "footer.site-footer.footer", Kind: entities.KindCSS}, 1},
		{entities.SelectorEntry{Name: "footer_x", Locator: "//footer", Kind: entities.KindXPath}, 1},
		{entities.SelectorEntry{Name: "login_text", Locator: "Log In", Kind: entities.KindText}, 1},
		{entities.SelectorEntry{Name: "search_input", Locator: "name=keys", Kind: entities.KindAttribute}, 1},
		{entities.SelectorEntry{Name: "blog_link", Locator: "a[href='/blog']", Kind: entities.KindCSS}, 2},
		{entities.SelectorEntry{Name: "nothing", Locator: "#nope", Kind: entities.KindCSS}, 0},
	}
	for _, tc := range cases {
		n, err := src.Count(ctx, tc.entry)
		require.NoError(t, err, tc.entry.Name)
		assert.Equal(t, tc.want, n, tc.entry.Name)
	}

	_, err := src.Count(ctx, entities.SelectorEntry{Name: "bad", Locator: "//a[", Kind: entities.KindXPath})
	assert.Error(t, err)
}

func TestCountTextMatchesLikeABrowser(t *testing.T) {
	src, err := New(strings.NewReader(`<html><head><title>Vendor Profiles</title></head><body>
<section>
  <p>Manage Vendor Profiles at scale</p>
  <ul><li>See <b>more</b> underground   forums</li></ul>
  <div><span>Shadow IT</span></div>
</section>
<script>var label = "shadow it";</script>
</body></html>`), "mem://")
	require.NoError(t, err)
	ctx := context.Background()

	cases := []struct {
		locator string
		want    int
	}{
		{"vendor profiles", 1},
		{"VENDOR PROFILES", 1},
		{"underground forums", 1},
		{"shadow IT", 1},
		{"ransomware groups", 0},
	}
	for _, tc := range cases {
		n, err := src.Count(ctx, entities.SelectorEntry{Name: "t", Locator: tc.locator, Kind: entities.KindText})
		require.NoError(t, err, tc.locator)
		assert.Equal(t, tc.want, n, tc.locator)
	}

	// the innermost element is the match, not its ancestors
	text, err := src.Text(entities.SelectorEntry{Name: "t", Locator: "shadow it", Kind: entities.KindText})
	require.NoError(t, err)
	assert.Equal(t, "Shadow IT", text)
}

func TestText(t *testing.T) {
	src := openHome(t)
	text, err := src.Text(entities.SelectorEntry{Name: "hero_title", Locator: ".hero-homepage__title", Kind: entities.KindCSS})
	require.NoError(t, err)
	assert.Equal(t, "AI-powered intelligence for cyber risk", text)

	_, err = src.Text(entities.SelectorEntry{Name: "nothing", Locator: "#nope", Kind: entities.KindCSS})
	var notReady *entities.ElementNotReadyError
	assert.ErrorAs(t, err, &notReady)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><header class="site-header"><nav></nav></header></body></html>`)
	}))
	defer server.Close()

	src, status, err := Fetch(context.Background(), server.Client(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, src.Document().Find("header.site-header nav").Length())

	_, status, err = Fetch(context.Background(), server.Client(), server.URL+"/missing")
	var nav *entities.NavigationError
	require.ErrorAs(t, err, &nav)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, http.StatusNotFound, nav.Status)
}
