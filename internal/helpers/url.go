package helpers

import (
	"fmt"
	"net/url"
	"strings"
)

// Handles resolves a named route into a path below basePath.
func Handles(basePath string, route string, args ...any) string {
	if len(args) > 0 {
		escaped := make([]any, len(args))
		for i, arg := range args {
			escaped[i] = url.PathEscape(fmt.Sprint(arg))
		}
		route = fmt.Sprintf(route, escaped...)
	}

	path := strings.TrimSuffix(basePath, "/") + "/" + strings.TrimPrefix(route, "/")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// AbsoluteURL prefixes a path produced by Handles with the public web URL.
func AbsoluteURL(webURL string, path string) string {
	return strings.TrimSuffix(webURL, "/") + path
}
