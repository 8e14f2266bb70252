package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
)

// DOMSource enumerates elements of a rendered page for extraction
type DOMSource struct {
	page playwright.Page
}

// NewDOMSource - wraps a loaded page
func NewDOMSource(page playwright.Page) *DOMSource {
	return &DOMSource{page: page}
}

// elementsJS walks the rendered DOM and reports visible elements matching the
// filter with all their attributes
const elementsJS = `
(filter) => {
	const parts = [...(filter.tags || [])];
	(filter.roles || []).forEach(r => parts.push('[role="' + r + '"]'));
	if (parts.length === 0) return [];

	const visible = (el) => {
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') return false;
		if (el.closest('[hidden], [aria-hidden="true"]')) return false;
		if (el.tagName === 'INPUT' && el.type === 'hidden') return false;
		return rect.width > 0 && rect.height > 0;
	};

	const out = [];
	document.querySelectorAll(parts.join(', ')).forEach(el => {
		if (!visible(el)) return;

		let classes = '';
		if (typeof el.className === 'string') {
			classes = el.className;
		} else if (el.className && typeof el.className.baseVal === 'string') {
			classes = el.className.baseVal;
		}

		const attributes = {};
		Array.from(el.attributes).forEach(attr => { attributes[attr.name] = attr.value; });

		const text = (el.innerText || '').replace(/\s+/g, ' ').trim() || el.value || el.placeholder || '';
		out.push({
			tag: el.tagName.toLowerCase(),
			id: el.id || '',
			role: el.getAttribute('role') || '',
			classes: classes.split(/\s+/).filter(c => c),
			attributes: attributes,
			text: Array.from(text).slice(0, 200).join(''),
		});
	});
	return out;
}
`

// Elements - visible elements whose tag or role is in filter
func (s *DOMSource) Elements(ctx context.Context, filter interfaces.ElementFilter) ([]entities.ElementCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.page.Evaluate(elementsJS, map[string]any{
		"tags":  filter.Tags,
		"roles": filter.Roles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract elements: %w", err)
	}

	items, ok := result.([]interface{})
	if !ok {
		return nil, nil
	}
	out := make([]entities.ElementCandidate, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, candidateFromMap(m))
	}
	return out, nil
}

// Count - number of elements matching entry on the page
func (s *DOMSource) Count(ctx context.Context, entry entities.SelectorEntry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	selector, err := Selector(entry)
	if err != nil {
		return 0, err
	}
	return s.page.Locator(selector).Count()
}

// URL - the page's current URL
func (s *DOMSource) URL() string {
	return s.page.URL()
}

func candidateFromMap(m map[string]interface{}) entities.ElementCandidate {
	c := entities.ElementCandidate{
		Tag:        getString(m, "tag"),
		ID:         getString(m, "id"),
		Role:       getString(m, "role"),
		Text:       getString(m, "text"),
		Attributes: make(map[string]string),
	}
	if classes, ok := m["classes"].([]interface{}); ok {
		for _, cls := range classes {
			if s, ok := cls.(string); ok {
				c.Classes = append(c.Classes, s)
			}
		}
	}
	if attrs, ok := m["attributes"].(map[string]interface{}); ok {
		for k, v := range attrs {
			if s, ok := v.(string); ok {
				c.Attributes[k] = s
			}
		}
	}
	return c
}

// getString - extracts string value from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

var _ interfaces.DOMSource = (*DOMSource)(nil)
