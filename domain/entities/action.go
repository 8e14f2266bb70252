package entities

// Primitive is a single browser operation a page object may issue
type Primitive string

const (
	PrimitiveNavigate      Primitive = "navigate"
	PrimitiveClick         Primitive = "click"
	PrimitiveReadText      Primitive = "read-text"
	PrimitiveIsVisible     Primitive = "check-visibility"
	PrimitiveReadAttribute Primitive = "read-attribute"
)

// Action is one primitive about to be issued against a resolved entry
type Action struct {
	Primitive Primitive     `json:"primitive"`
	Entry     SelectorEntry `json:"entry"`
	URL       string        `json:"url,omitempty"`
	Attribute string        `json:"attribute,omitempty"`
}
