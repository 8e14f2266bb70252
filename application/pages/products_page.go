package pages

import (
	"context"

	"site_uitest/domain/interfaces"
	"site_uitest/domain/registry"
)

// Product page paths
const (
	PathTPRM               = "/products/third-party-risk-management"
	PathExposureManagement = "/solutions/exposure-management"
	PathThreatIntelligence = "/products/cyber-threat-intelligence"
)

// ProductsPage covers the product and solution pages
type ProductsPage struct {
	*BasePage
}

// NewProductsPage - binds the product page names from reg
func NewProductsPage(driver interfaces.PageDriver, reg *registry.Registry, baseURL string, guard interfaces.ActionGuard) *ProductsPage {
	return &ProductsPage{BasePage: NewBasePage(driver, reg.Subset(ProductSelectors...), baseURL, guard)}
}

// OpenTPRM - loads the third-party risk management page
func (p *ProductsPage) OpenTPRM(ctx context.Context) error {
	return p.Open(ctx, PathTPRM)
}

// OpenExposureManagement - loads the exposure management page
func (p *ProductsPage) OpenExposureManagement(ctx context.Context) error {
	return p.Open(ctx, PathExposureManagement)
}

// OpenThreatIntelligence - loads the cyber threat intelligence page
func (p *ProductsPage) OpenThreatIntelligence(ctx context.Context) error {
	return p.Open(ctx, PathThreatIntelligence)
}

// Title - text of the page heading
func (p *ProductsPage) Title(ctx context.Context) (string, error) {
	return p.Text(ctx, SelectorPageTitle)
}

// VerifyTPRM - TPRM heading and key copy are visible
func (p *ProductsPage) VerifyTPRM(ctx context.Context) error {
	return p.RequireVisible(ctx, SelectorTPRMTitle, SelectorVendorProfiles, SelectorAIAssessment)
}

// VerifyExposure - exposure management heading and key copy are visible
func (p *ProductsPage) VerifyExposure(ctx context.Context) error {
	return p.RequireVisible(ctx, SelectorExposureTitle, SelectorDigitalAssets, SelectorShadowIT)
}

// VerifyThreatIntelligence - threat intelligence heading and key copy are visible
func (p *ProductsPage) VerifyThreatIntelligence(ctx context.Context) error {
	return p.RequireVisible(ctx, SelectorThreatTitle, SelectorUndergroundForums, SelectorRansomware)
}

// RequestDemo - follows the demo link shown on product pages
func (p *ProductsPage) RequestDemo(ctx context.Context) error {
	return p.Click(ctx, SelectorDemoButton)
}
