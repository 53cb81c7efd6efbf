package util

import "testing"

func TestIsRedirectSafe(t *testing.T) {
	tests := []struct {
		name        string
		redirectURL string
		baseURL     string
		want        bool
	}{
		{"empty redirect", "", "http://localhost:3000", true},
		{"relative path", "/user", "http://localhost:3000", true},
		{"relative path with query", "/favorite-color?x=1", "http://localhost:3000", true},
		{"protocol relative", "//evil.com", "http://localhost:3000", false},
		{"backslash trick", "/\\evil.com", "http://localhost:3000", false},
		{"same host absolute", "http://localhost:3000/user", "http://localhost:3000", true},
		{"different host", "https://evil.com/user", "http://localhost:3000", false},
		{"javascript scheme", "javascript:alert(1)", "http://localhost:3000", false},
		{"data scheme", "data:text/html,hi", "http://localhost:3000", false},
		{"header injection", "/user\r\nSet-Cookie: x=y", "http://localhost:3000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRedirectSafe(tt.redirectURL, tt.baseURL); got != tt.want {
				t.Errorf("IsRedirectSafe(%q, %q) = %v, want %v",
					tt.redirectURL, tt.baseURL, got, tt.want)
			}
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	if got := SafeRedirect("/user", "/", "http://localhost:3000"); got != "/user" {
		t.Errorf("SafeRedirect kept-path = %q", got)
	}
	if got := SafeRedirect("//evil.com", "/", "http://localhost:3000"); got != "/" {
		t.Errorf("SafeRedirect unsafe = %q", got)
	}
	if got := SafeRedirect("", "/login", "http://localhost:3000"); got != "/login" {
		t.Errorf("SafeRedirect empty = %q", got)
	}
}
