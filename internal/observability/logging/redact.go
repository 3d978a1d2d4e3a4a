package logging

import (
	"net/url"
	"regexp"
)

// urlPathPattern matches the path and query of an http(s) URL. Incoming
// webhook URLs carry their secret in the path.
var urlPathPattern = regexp.MustCompile(`(https?://[^/\s"']+)/[^\s"']*`)

// RedactURL keeps only the scheme and host of raw, e.g.
// "https://hooks.slack.com/****". Unparseable input is masked entirely.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "****"
	}
	return u.Scheme + "://" + u.Host + "/****"
}

// SanitizeError returns the error message with URL paths masked.
// net/http errors quote the full request URL, which includes the webhook secret.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return urlPathPattern.ReplaceAllString(err.Error(), "$1/****")
}
