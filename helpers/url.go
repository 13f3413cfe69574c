package helpers

import (
	"net/url"
	"path"
	"strings"

	"mvdan.cc/xurls"
)

var imageExtensions = []string{".gif", ".png", ".jpg", ".jpeg", ".webp"}

// IsImageURL accepts a single http(s) URL whose path ends in an image extension.
// Only the path is checked, query and fragment are ignored.
func IsImageURL(input string) bool {
	input = strings.TrimSpace(input)
	if xurls.Strict.FindString(input) != input {
		return false
	}

	parsed, err := url.Parse(input)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	ext := strings.ToLower(path.Ext(parsed.Path))
	for _, imageExt := range imageExtensions {
		if ext == imageExt {
			return true
		}
	}
	return false
}
