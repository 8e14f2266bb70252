package suite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site_uitest/domain/entities"
)

// =============================================================================
// Homepage smoke tests
// =============================================================================

func TestBrowser_Home_Loads(t *testing.T) {
	f := harness.Setup(t, entities.CategorySmoke, entities.CategoryRegression)

	require.NoError(t, f.Home.Open(f.Ctx))

	title, err := f.Page(t).Title()
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(title), "bitsight", "page title %q", title)

	require.NoError(t, f.Home.VerifyHeader(f.Ctx))
	footer, err := f.Home.IsFooterVisible(f.Ctx)
	require.NoError(t, err)
	assert.True(t, footer, "footer not visible")
}

func TestBrowser_Home_Hero(t *testing.T) {
	f := harness.Setup(t, entities.CategorySmoke, entities.CategoryContent)

	require.NoError(t, f.Home.Open(f.Ctx))
	require.NoError(t, f.Home.VerifyHero(f.Ctx))

	title, err := f.Home.HeroTitle(f.Ctx)
	require.NoError(t, err)
	assert.Greater(t, len(title), 10, "hero title %q is too short", title)
	lower := strings.ToLower(title)
	assert.True(t, strings.Contains(title, "AI") || strings.Contains(lower, "intelligence"),
		"hero title %q does not carry the brand message", title)
}

func TestBrowser_Home_LoginLinkTarget(t *testing.T) {
	f := harness.Setup(t, entities.CategorySmoke, entities.CategoryNavigation)

	require.NoError(t, f.Home.Open(f.Ctx))

	href, err := f.Home.LoginHref(f.Ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://service.bitsighttech.com/", href)
}

func TestBrowser_Home_HeaderIsTransparentOnLoad(t *testing.T) {
	f := harness.Setup(t, entities.CategoryUI, entities.CategoryReal)

	require.NoError(t, f.Home.Open(f.Ctx))

	class, err := f.Home.HeaderClass(f.Ctx)
	require.NoError(t, err)
	assert.Contains(t, strings.Fields(class), "site-header")
}

func TestBrowser_Home_CriticalEntriesMatchLivePage(t *testing.T) {
	f := harness.Setup(t, entities.CategoryReal, entities.CategorySmoke)

	require.NoError(t, f.Home.Open(f.Ctx))
	dom := f.DOM(t)

	for _, name := range []string{"header", "main_nav", "login_button", "hero_container", "footer", "search_form"} {
		entry, err := f.Registry.Resolve(name)
		require.NoError(t, err)

		n, err := dom.Count(f.Ctx, entry)
		require.NoError(t, err, name)
		assert.GreaterOrEqual(t, n, 1, "%s (%s) matches nothing", name, entry.Locator)
	}
}
