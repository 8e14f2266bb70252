package security

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
)

// Risk levels reported by RiskLevel
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

var (
	destructiveKeywords = []string{
		"delete", "remove", "trash", "clear", "reset", "unsubscribe", "logout", "sign-out",
	}
	submitKeywords = []string{
		"submit", "send", "confirm", "register", "signup", "sign-up",
	}
	paymentKeywords = []string{
		"payment", "checkout", "purchase", "order", "buy", "pay",
	}
)

// Guard keeps the suite from submitting forms or triggering destructive
// actions on the live site. Reads and navigation always pass.
type Guard struct {
	allowSubmit bool
	logger      *logrus.Logger
}

// NewGuard - creates a guard; allowSubmit lets submit-like clicks through
func NewGuard(allowSubmit bool, logger *logrus.Logger) *Guard {
	return &Guard{
		allowSubmit: allowSubmit,
		logger:      logger,
	}
}

// Check - refuses destructive and payment clicks always, and submit clicks
// unless they were allowed
func (g *Guard) Check(ctx context.Context, action entities.Action) error {
	if action.Primitive != entities.PrimitiveClick {
		return nil
	}

	if kw := matchKeyword(action.Entry, destructiveKeywords); kw != "" {
		return g.refuse(action, "destructive action ("+kw+")")
	}
	if kw := matchKeyword(action.Entry, paymentKeywords); kw != "" {
		return g.refuse(action, "payment action ("+kw+")")
	}
	if kw := matchKeyword(action.Entry, submitKeywords); kw != "" && !g.allowSubmit {
		return g.refuse(action, "form submission ("+kw+"); set UITEST_ALLOW_SUBMIT=true to allow")
	}
	return nil
}

// RiskLevel - classifies an action without refusing it
func (g *Guard) RiskLevel(action entities.Action) string {
	switch action.Primitive {
	case entities.PrimitiveClick:
		if matchKeyword(action.Entry, destructiveKeywords) != "" || matchKeyword(action.Entry, paymentKeywords) != "" {
			return RiskHigh
		}
		if matchKeyword(action.Entry, submitKeywords) != "" {
			return RiskMedium
		}
		return RiskLow
	default:
		return RiskLow
	}
}

func (g *Guard) refuse(action entities.Action, reason string) error {
	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"name":    action.Entry.Name,
			"locator": action.Entry.Locator,
		}).Warnf("Refused click: %s", reason)
	}
	return &entities.UnsafeActionError{Action: action, Reason: reason}
}

// matchKeyword - returns the first keyword found as whole words in the
// entry's name, description or locator. "sign-out" matches "Sign out" and
// "signOut" but "order" does not match ".border-top".
func matchKeyword(entry entities.SelectorEntry, keywords []string) string {
	haystacks := [][]string{
		words(entry.Name),
		words(entry.Description),
		words(entry.Locator),
	}
	for _, kw := range keywords {
		needle := words(kw)
		for _, h := range haystacks {
			if containsRun(h, needle) {
				return kw
			}
		}
	}
	return ""
}

// words - lowercased letter and digit runs of s, split at camelCase humps
func words(s string) []string {
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

// containsRun - whether needle occurs as consecutive words of haystack
func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}

var _ interfaces.ActionGuard = (*Guard)(nil)
