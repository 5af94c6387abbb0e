package layout

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const layoutSuffix = "Layout"

// DeriveName strips the extension and a trailing "Layout" from a layout
// file name: "TitleLayout.tsx" becomes "Title". A file named just
// "Layout.tsx" keeps its base name.
func DeriveName(file string) string {
	base := filepath.Base(file)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if trimmed := strings.TrimSuffix(base, layoutSuffix); trimmed != "" {
		return trimmed
	}
	return base
}

// DeriveID is DeriveName lowercased. A Caser is stateful, so each call
// gets its own.
func DeriveID(file string) string {
	return cases.Lower(language.Und).String(DeriveName(file))
}

// SlideID joins a template and layout id as "<template>:<layout>".
func SlideID(template, layoutID string) string {
	return template + ":" + layoutID
}

var templateNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidTemplateName reports whether name is made only of ASCII letters,
// digits, '-' and '_'. Only such templates can be requested over HTTP.
func ValidTemplateName(name string) bool {
	return templateNameRe.MatchString(name)
}
