package media

import (
	"net/url"
	"path"
	"strings"
)

// IDFromLocator derives an object id from a public locator: the last path
// segment with its extension stripped. It only works for locators shaped like
// the ones Upload returns, which is why posts also store the id explicitly.
func IDFromLocator(locator string) string {
	p := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(strings.TrimRight(p, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
