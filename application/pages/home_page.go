package pages

import (
	"context"
	"fmt"

	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
)

// DemoKind picks one of the demo request links on the home page
type DemoKind string

const (
	DemoMain        DemoKind = "main"
	DemoSupplyChain DemoKind = "supply_chain"
	DemoExposure    DemoKind = "exposure"
	DemoThreatIntel DemoKind = "threat_intel"
)

var demoSelectors = map[DemoKind]string{
	DemoMain:        SelectorDemoButton,
	DemoSupplyChain: SelectorSupplyChainDemo,
	DemoExposure:    SelectorExposureDemo,
	DemoThreatIntel: SelectorThreatIntelDemo,
}

// HomePage is the site landing page
type HomePage struct {
	*BasePage
}

// NewHomePage - binds the home page names from reg
func NewHomePage(driver interfaces.PageDriver, reg *registry.Registry, baseURL string, guard interfaces.ActionGuard) *HomePage {
	return &HomePage{BasePage: NewBasePage(driver, reg.Subset(HomeSelectors...), baseURL, guard)}
}

// Open - loads the landing page
func (h *HomePage) Open(ctx context.Context) error {
	return h.BasePage.Open(ctx, "/")
}

// ClickLogin - follows the header Log In link
func (h *HomePage) ClickLogin(ctx context.Context) error {
	return h.Click(ctx, SelectorLoginButton)
}

// LoginHref - target of the Log In link
func (h *HomePage) LoginHref(ctx context.Context) (string, error) {
	return h.Attribute(ctx, SelectorLoginButton, "href")
}

// ClickRequestDemo - follows the main demo request link
func (h *HomePage) ClickRequestDemo(ctx context.Context) error {
	return h.ClickDemo(ctx, DemoMain)
}

// ClickDemo - follows the demo link of the given kind
func (h *HomePage) ClickDemo(ctx context.Context, kind DemoKind) error {
	name, ok := demoSelectors[kind]
	if !ok {
		return fmt.Errorf("unknown demo kind %q", kind)
	}
	return h.Click(ctx, name)
}

// DemoHref - target of the demo link of the given kind
func (h *HomePage) DemoHref(ctx context.Context, kind DemoKind) (string, error) {
	name, ok := demoSelectors[kind]
	if !ok {
		return "", fmt.Errorf("unknown demo kind %q", kind)
	}
	return h.Attribute(ctx, name, "href")
}

// ClickResources - opens the Resources menu entry
func (h *HomePage) ClickResources(ctx context.Context) error {
	return h.Click(ctx, SelectorResourcesLink)
}

// ClickContact - follows the Contact Us button
func (h *HomePage) ClickContact(ctx context.Context) error {
	return h.Click(ctx, SelectorContactButton)
}

// HeroTitle - text of the hero heading
func (h *HomePage) HeroTitle(ctx context.Context) (string, error) {
	return h.Text(ctx, SelectorHeroTitle)
}

// IsHeroVisible - whether the hero block is shown
func (h *HomePage) IsHeroVisible(ctx context.Context) (bool, error) {
	return h.Visible(ctx, SelectorHeroContainer)
}

// IsHeaderVisible - whether the site header is shown
func (h *HomePage) IsHeaderVisible(ctx context.Context) (bool, error) {
	return h.Visible(ctx, SelectorHeader)
}

// IsNavVisible - whether the main navigation is shown
func (h *HomePage) IsNavVisible(ctx context.Context) (bool, error) {
	return h.Visible(ctx, SelectorMainNav)
}

// IsFooterVisible - whether the footer is shown
func (h *HomePage) IsFooterVisible(ctx context.Context) (bool, error) {
	return h.Visible(ctx, SelectorFooter)
}

// IsSearchFormVisible - whether the search form is shown
func (h *HomePage) IsSearchFormVisible(ctx context.Context) (bool, error) {
	return h.Visible(ctx, SelectorSearchForm)
}

// HeaderClass - class attribute of the site header
func (h *HomePage) HeaderClass(ctx context.Context) (string, error) {
	return h.Attribute(ctx, SelectorHeader, "class")
}

// MetaDescription - content of the description meta tag
func (h *HomePage) MetaDescription(ctx context.Context) (string, error) {
	return h.Attribute(ctx, SelectorMetaDescription, "content")
}

// CanonicalURL - href of the canonical link
func (h *HomePage) CanonicalURL(ctx context.Context) (string, error) {
	return h.Attribute(ctx, SelectorCanonicalLink, "href")
}

// VerifyHeader - header and main navigation are both visible
func (h *HomePage) VerifyHeader(ctx context.Context) error {
	return h.RequireVisible(ctx, SelectorHeader, SelectorMainNav)
}

// VerifyHero - hero block and heading are both visible
func (h *HomePage) VerifyHero(ctx context.Context) error {
	return h.RequireVisible(ctx, SelectorHeroContainer, SelectorHeroTitle)
}
