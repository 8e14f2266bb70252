package pages

// Registry names the page objects bind. The locators live in the selector
// snapshot; only the names are fixed in code.

// Home page.
const (
	SelectorHeader          = "header"
	SelectorMainNav         = "main_nav"
	SelectorMenuLink        = "menu_link"
	SelectorResourcesLink   = "resources_menu_link"
	SelectorDemoButton      = "demo_button"
	SelectorSupplyChainDemo = "supply_chain_demo"
	SelectorExposureDemo    = "exposure_demo"
	SelectorThreatIntelDemo = "threat_intel_demo"
	SelectorLoginButton     = "login_button"
	SelectorHeroContainer   = "hero_container"
	SelectorHeroTitle       = "hero_title"
	SelectorFooter          = "footer"
	SelectorSearchForm      = "search_form"
	SelectorSearchInput     = "search_input"
	SelectorContactButton   = "contact_button"
	SelectorMetaDescription = "meta_description"
	SelectorCanonicalLink   = "canonical_link"
	SelectorSkipLink        = "skip_link"
)

// Product pages.
const (
	SelectorPageTitle         = "page_title"
	SelectorTPRMTitle         = "tprm_title"
	SelectorVendorProfiles    = "tprm_vendor_profiles"
	SelectorAIAssessment      = "tprm_ai_assessment"
	SelectorExposureTitle     = "exposure_title"
	SelectorDigitalAssets     = "exposure_digital_assets"
	SelectorShadowIT          = "exposure_shadow_it"
	SelectorThreatTitle       = "threat_title"
	SelectorUndergroundForums = "threat_underground_forums"
	SelectorRansomware        = "threat_ransomware_groups"
)

// Search results page.
const (
	SelectorSearchResults = "search_results"
)

// HomeSelectors lists every name the home page object binds
var HomeSelectors = []string{
	SelectorHeader,
	SelectorMainNav,
	SelectorMenuLink,
	SelectorResourcesLink,
	SelectorDemoButton,
	SelectorSupplyChainDemo,
	SelectorExposureDemo,
	SelectorThreatIntelDemo,
	SelectorLoginButton,
	SelectorHeroContainer,
	SelectorHeroTitle,
	SelectorFooter,
	SelectorSearchForm,
	SelectorSearchInput,
	SelectorContactButton,
	SelectorMetaDescription,
	SelectorCanonicalLink,
	SelectorSkipLink,
}

// ProductSelectors lists every name the products page object binds
var ProductSelectors = []string{
	SelectorHeader,
	SelectorFooter,
	SelectorPageTitle,
	SelectorTPRMTitle,
	SelectorVendorProfiles,
	SelectorAIAssessment,
	SelectorExposureTitle,
	SelectorDigitalAssets,
	SelectorShadowIT,
	SelectorThreatTitle,
	SelectorUndergroundForums,
	SelectorRansomware,
	SelectorDemoButton,
}

// SearchSelectors lists every name the search page object binds
var SearchSelectors = []string{
	SelectorHeader,
	SelectorPageTitle,
	SelectorSearchForm,
	SelectorSearchInput,
	SelectorSearchResults,
}
