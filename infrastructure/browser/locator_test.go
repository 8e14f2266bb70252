package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium"

	"site_uitest/domain/entities"
)

func TestSelector(t *testing.T) {
	cases := []struct {
		entry entities.SelectorEntry
		want  string
	}{
		{entities.SelectorEntry{Locator: "header.site-header", Kind: entities.KindCSS}, "header.site-header"},
		{entities.SelectorEntry{Locator: `a:has-text("Resources")`, Kind: entities.KindCSS}, `a:has-text("Resources")`},
		{entities.SelectorEntry{Locator: "//footer//a", Kind: entities.KindXPath}, "xpath=//footer//a"},
		{entities.SelectorEntry{Locator: "data-testid=cta", Kind: entities.KindAttribute}, `[data-testid="cta"]`},
		{entities.SelectorEntry{Locator: " vendor profiles ", Kind: entities.KindText}, "text=vendor profiles"},
	}
	for _, tc := range cases {
		got, err := Selector(tc.entry)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := Selector(entities.SelectorEntry{Locator: "x", Kind: "id"})
	assert.Error(t, err)
}

func TestWebDriverStrategy(t *testing.T) {
	strategy, value, err := by(entities.SelectorEntry{Locator: "name=keys", Kind: entities.KindAttribute})
	require.NoError(t, err)
	assert.Equal(t, selenium.ByCSSSelector, strategy)
	assert.Equal(t, `[name="keys"]`, value)

	strategy, value, err = by(entities.SelectorEntry{Locator: "Log In", Kind: entities.KindText})
	require.NoError(t, err)
	assert.Equal(t, selenium.ByXPATH, strategy)
	assert.Contains(t, value, "'log in'")

	_, _, err = by(entities.SelectorEntry{Locator: `a:has-text("Resources")`, Kind: entities.KindCSS})
	assert.ErrorIs(t, err, errUnsupportedLocator)
	_, _, err = by(entities.SelectorEntry{Locator: "button:visible", Kind: entities.KindCSS})
	assert.ErrorIs(t, err, errUnsupportedLocator)
}

func TestSeleniumRefusesPlaywrightOnlyLocators(t *testing.T) {
	// the lookup fails before the driver is touched
	d := &SeleniumDriver{timeout: time.Second}
	entry := entities.SelectorEntry{Name: "resources_menu_link", Locator: `a:has-text("Resources")`, Kind: entities.KindCSS}
	ctx := context.Background()

	_, err := d.ReadText(ctx, entry)
	var notReadyErr *entities.ElementNotReadyError
	require.ErrorAs(t, err, &notReadyErr)
	assert.Equal(t, "resources_menu_link", notReadyErr.Name)
	assert.ErrorIs(t, err, errUnsupportedLocator)

	visible, err := d.IsVisible(ctx, entry)
	assert.False(t, visible)
	require.ErrorAs(t, err, &notReadyErr)
	assert.NotErrorIs(t, err, errWaitTimeout)

	err = d.Click(ctx, entry)
	require.ErrorAs(t, err, &notReadyErr)
}

func TestBounded(t *testing.T) {
	assert.Equal(t, 10*time.Second, bounded(context.Background(), 10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := bounded(ctx, 10*time.Second)
	assert.LessOrEqual(t, got, time.Second)
	assert.Greater(t, got, time.Duration(0))
}

func TestPoll(t *testing.T) {
	calls := 0
	err := poll(context.Background(), time.Second, func() (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	err = poll(context.Background(), 50*time.Millisecond, func() (bool, error) { return false, nil })
	assert.ErrorIs(t, err, errWaitTimeout)

	boom := errors.New("boom")
	err = poll(context.Background(), time.Second, func() (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = poll(ctx, time.Second, func() (bool, error) { return false, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotReadyWrapsCause(t *testing.T) {
	entry := entities.SelectorEntry{Name: "hero_title", Locator: ".hero-homepage__title", Kind: entities.KindCSS}
	err := notReady(entry, 2*time.Second, errWaitTimeout)

	var nr *entities.ElementNotReadyError
	require.ErrorAs(t, err, &nr)
	assert.Equal(t, "hero_title", nr.Name)
	assert.Equal(t, 2*time.Second, nr.Waited)
	assert.ErrorIs(t, err, errWaitTimeout)
}
