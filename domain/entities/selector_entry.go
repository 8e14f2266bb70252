package entities

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
)

// LocatorKind tells a driver how to interpret SelectorEntry.Locator
type LocatorKind string

const (
	KindCSS       LocatorKind = "css"
	KindXPath     LocatorKind = "xpath"
	KindAttribute LocatorKind = "attribute"
	KindText      LocatorKind = "text"
)

var locatorKinds = []LocatorKind{KindCSS, KindXPath, KindAttribute, KindText}

var (
	entryNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	attrNamePattern  = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_:.]*$`)
)

// ParseLocatorKind - parses a kind name, case-insensitively
func ParseLocatorKind(s string) (LocatorKind, error) {
	k := LocatorKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range locatorKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown locator kind %q (want one of css, xpath, attribute, text)", s)
}

// LocatorKinds - returns every supported kind
func LocatorKinds() []LocatorKind {
	return append([]LocatorKind(nil), locatorKinds...)
}

// SelectorEntry binds a symbolic element name to the locator that finds it
type SelectorEntry struct {
	Name        string      `json:"name" yaml:"name"`
	Locator     string      `json:"locator" yaml:"locator"`
	Kind        LocatorKind `json:"kind" yaml:"kind"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate - checks the name and that the locator parses for its kind
func (e SelectorEntry) Validate() error {
	if e.Name == "" {
		return &InvalidSelectorError{Entry: e, Reason: "name is empty"}
	}
	if !entryNamePattern.MatchString(e.Name) {
		return &InvalidSelectorError{Entry: e, Reason: "name must be lower snake_case"}
	}
	if strings.TrimSpace(e.Locator) == "" {
		return &InvalidSelectorError{Entry: e, Reason: "locator is empty"}
	}

	switch e.Kind {
	case KindCSS:
		if _, err := cascadia.ParseGroup(CSSForMatching(e.Locator)); err != nil {
			return &InvalidSelectorError{Entry: e, Reason: "invalid css selector", Err: err}
		}
	case KindXPath:
		if _, err := xpath.Compile(e.Locator); err != nil {
			return &InvalidSelectorError{Entry: e, Reason: "invalid xpath expression", Err: err}
		}
	case KindAttribute:
		if _, _, err := splitAttribute(e.Locator); err != nil {
			return &InvalidSelectorError{Entry: e, Reason: err.Error()}
		}
	case KindText:
		if strings.ContainsAny(e.Locator, "\r\n") {
			return &InvalidSelectorError{Entry: e, Reason: "text locator must be a single line"}
		}
	default:
		return &InvalidSelectorError{Entry: e, Reason: fmt.Sprintf("unknown locator kind %q", e.Kind)}
	}
	return nil
}

// Attribute - splits an attribute locator into its name and value
func (e SelectorEntry) Attribute() (name, value string, err error) {
	if e.Kind != KindAttribute {
		return "", "", fmt.Errorf("entry %q is a %s locator, not attribute", e.Name, e.Kind)
	}
	return splitAttribute(e.Locator)
}

// AsCSS - renders css and attribute entries as a plain CSS selector.
// Other kinds return ok=false.
func (e SelectorEntry) AsCSS() (string, bool) {
	switch e.Kind {
	case KindCSS:
		return e.Locator, true
	case KindAttribute:
		name, value, err := splitAttribute(e.Locator)
		if err != nil {
			return "", false
		}
		return AttributeSelector(name, value), true
	}
	return "", false
}

// AsXPath - renders xpath and text entries as an XPath expression.
// Other kinds return ok=false.
//
// A text entry matches the innermost elements whose whitespace-normalized
// text contains the locator, ignoring ASCII case, the way a browser text
// selector does. Script, style and head content never match.
func (e SelectorEntry) AsXPath() (string, bool) {
	switch e.Kind {
	case KindXPath:
		return e.Locator, true
	case KindText:
		needle := xpathLiteral(foldASCII(strings.Join(strings.Fields(e.Locator), " ")))
		has := fmt.Sprintf("contains(translate(normalize-space(.), '%s', '%s'), %s)", upperASCII, lowerASCII, needle)
		return fmt.Sprintf("//*[%s][not(*[%s])][not(ancestor-or-self::script or ancestor-or-self::style or ancestor-or-self::head)]", has, has), true
	}
	return "", false
}

const (
	upperASCII = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerASCII = "abcdefghijklmnopqrstuvwxyz"
)

// foldASCII lowercases A-Z only, matching what translate() does in XPath 1.0
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// String - short human form used in logs
func (e SelectorEntry) String() string {
	return fmt.Sprintf("%s (%s: %s)", e.Name, e.Kind, e.Locator)
}

// AttributeSelector - builds [name="value"] with the value escaped
func AttributeSelector(name, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return fmt.Sprintf(`[%s="%s"]`, name, value)
}

// CSSForMatching - rewrites the browser-engine text pseudo-classes into the
// :contains() form understood by static CSS matchers
func CSSForMatching(css string) string {
	css = strings.ReplaceAll(css, ":has-text(", ":contains(")
	css = strings.ReplaceAll(css, ":text(", ":contains(")
	css = strings.ReplaceAll(css, ":visible", "")
	return css
}

func splitAttribute(locator string) (string, string, error) {
	name, value, ok := strings.Cut(locator, "=")
	if !ok {
		return "", "", fmt.Errorf("attribute locator must look like name=value")
	}
	name = strings.TrimSpace(name)
	if !attrNamePattern.MatchString(name) {
		return "", "", fmt.Errorf("invalid attribute name %q", name)
	}
	if value == "" {
		return "", "", fmt.Errorf("attribute %q has an empty value", name)
	}
	return name, value, nil
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
