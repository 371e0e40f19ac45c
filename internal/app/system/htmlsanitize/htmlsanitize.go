// Package htmlsanitize cleans user-supplied text before it is stored or
// placed into outbound email.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce    sync.Once
	ugcPolicy  *bluemonday.Policy
	textOnce   sync.Once
	textPolicy *bluemonday.Policy
)

func ugc() *bluemonday.Policy {
	ugcOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

func strict() *bluemonday.Policy {
	textOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// Sanitize keeps safe formatting HTML and drops scripts, event handlers and
// javascript: links.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc().Sanitize(s)
}

// PlainText strips all markup and returns trimmed text with entities decoded.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(s)))
}
