// Package urlutil provides URL manipulation utilities for building the
// public links showbook hands out.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URL scheme constants.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// NormalizeBaseURL normalizes a base URL for consistent use:
//   - Adds http:// scheme if no scheme provided
//   - Removes trailing slash for clean path joining
//
// Examples:
//
//	"showbook.example"        -> "http://showbook.example"
//	"https://showbook.example/" -> "https://showbook.example"
//	"localhost:8080"          -> "http://localhost:8080"
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return strings.TrimSuffix(baseURL, "/")
}

// JoinPath joins a base URL with a path, ensuring single slashes. An empty
// base yields the path alone, i.e. a relative link.
func JoinPath(baseURL, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if baseURL == "" {
		return path
	}
	return strings.TrimSuffix(baseURL, "/") + path
}

// ValidateBaseURL checks that u can prefix API paths: an absolute http or
// https URL without query or fragment. The empty string is valid.
func ValidateBaseURL(u string) error {
	if u == "" {
		return nil
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case SchemeHTTP, SchemeHTTPS:
	case "":
		return errors.New("URL must include a scheme (http:// or https://)")
	default:
		return fmt.Errorf("unsupported URL scheme: %s (supported: http, https)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return errors.New("URL must include a host")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return errors.New("URL must not carry a query or fragment")
	}
	return nil
}
