package toast

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Definition binds a custom element tag to its resources.
// StylesheetPath is empty when the component has no stylesheet.
type Definition struct {
	Tag            string
	TemplatePath   string
	StylesheetPath string
}

// Registry holds component definitions. Definitions are immutable once
// added and live as long as the registry.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Define registers tag with a template and optional stylesheet path.
//
// A tag that is already defined fails with *DuplicateDefinitionError and the
// existing definition is kept. A tag that is not a valid custom element name
// (lower case, starting with a letter, containing a hyphen) fails with
// ErrInvalidTagName.
func (reg *Registry) Define(tag, templatePath, stylesheetPath string) error {
	if err := ValidateTagName(tag); err != nil {
		return err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.defs[tag]; exists {
		return &DuplicateDefinitionError{Tag: tag}
	}
	reg.defs[tag] = Definition{
		Tag:            tag,
		TemplatePath:   templatePath,
		StylesheetPath: stylesheetPath,
	}
	return nil
}

// MustDefine is like Define but panics on error.
func (reg *Registry) MustDefine(tag, templatePath, stylesheetPath string) {
	if err := reg.Define(tag, templatePath, stylesheetPath); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for tag.
func (reg *Registry) Lookup(tag string) (Definition, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	def, ok := reg.defs[tag]
	return def, ok
}

// Definitions returns every definition sorted by tag.
func (reg *Registry) Definitions() []Definition {
	reg.mu.RLock()
	defs := make([]Definition, 0, len(reg.defs))
	for _, d := range reg.defs {
		defs = append(defs, d)
	}
	reg.mu.RUnlock()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Tag < defs[j].Tag })
	return defs
}

// reservedTags are hyphenated names already used by SVG and MathML.
var reservedTags = map[string]bool{
	"annotation-xml":   true,
	"color-profile":    true,
	"font-face":        true,
	"font-face-src":    true,
	"font-face-uri":    true,
	"font-face-format": true,
	"font-face-name":   true,
	"missing-glyph":    true,
}

// ValidateTagName checks that tag can name a custom element.
func ValidateTagName(tag string) error {
	if tag == "" || tag[0] < 'a' || tag[0] > 'z' || !strings.Contains(tag, "-") || reservedTags[tag] {
		return fmt.Errorf("%w: %q", ErrInvalidTagName, tag)
	}
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
		case r > unicode.MaxASCII && !unicode.IsUpper(r) && !unicode.IsSpace(r):
		default:
			return fmt.Errorf("%w: %q", ErrInvalidTagName, tag)
		}
	}
	return nil
}
