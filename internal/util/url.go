package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether redirectURL may be used as a Location.
// Relative paths are allowed unless protocol-relative ("//host") or containing
// backslashes; absolute http(s) URLs must share the host of baseURL.
func IsRedirectSafe(redirectURL, baseURL string) bool {
	if redirectURL == "" {
		return true
	}

	// header injection
	if strings.ContainsAny(redirectURL, "\r\n") {
		return false
	}

	if strings.HasPrefix(redirectURL, "/") {
		return !strings.HasPrefix(redirectURL, "//") && !strings.Contains(redirectURL, "\\")
	}

	parsedRedirect, err := url.Parse(redirectURL)
	if err != nil {
		return false
	}
	if parsedRedirect.Scheme != "" && parsedRedirect.Scheme != "http" &&
		parsedRedirect.Scheme != "https" {
		return false
	}

	if parsedRedirect.Host != "" {
		parsedBase, err := url.Parse(baseURL)
		if err != nil {
			return false
		}
		if parsedRedirect.Host != parsedBase.Host {
			return false
		}
	}

	return true
}

// SafeRedirect returns target when IsRedirectSafe accepts it and fallback otherwise.
func SafeRedirect(target, fallback, baseURL string) string {
	if target == "" || !IsRedirectSafe(target, baseURL) {
		return fallback
	}
	return target
}
