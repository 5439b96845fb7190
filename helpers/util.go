package helpers

import (
	"net/url"
	"strings"
)

// ProductRef returns the last path segment of a product URL. Suppliers
// embed a stable product reference in the listing URL slug, which doubles
// as the record SKU. Returns "" when the URL has no usable path.
func ProductRef(productURL string) string {
	u, err := url.Parse(productURL)
	if err != nil {
		return ""
	}
	path := strings.TrimRight(u.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		path = path[idx+1:]
	}
	return path
}
