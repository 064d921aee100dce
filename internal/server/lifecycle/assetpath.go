package lifecycle

import (
	"net/url"
	"strings"
)

// DeriveAssetPath returns the storage path of the blob behind a public asset
// URL: the URL's final path segment, without query string or fragment,
// under folder. It returns "" when the URL has no file name.
//
// The result depends only on the file name, so deriving again from the same
// URL, with or without a query string, or from an already derived path,
// yields the same value.
func DeriveAssetPath(assetURL, folder string) string {
	raw, _, _ := strings.Cut(assetURL, "#")
	raw, _, _ = strings.Cut(raw, "?")

	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}

	name := p[strings.LastIndex(p, "/")+1:]
	if name == "" {
		return ""
	}

	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
