package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// Key derives the cache key for a GET request.
//
// The canonical form is the URL actually requested: params are merged into
// any query rawURL already carries (params win on conflict) and the whole
// query is re-encoded in key order. Logically identical requests therefore
// share a key however the URL and parameter map were split, and distinct
// requests never do. The result is the hex SHA-256 of that form (64
// characters).
//
// Examples:
//   - (https://api.github.com/repos/o/r, nil) → sha256("https://api.github.com/repos/o/r")
//   - (…/issues, {per_page:100, state:all}) → sha256("…/issues?per_page=100&state=all")
//   - (…/issues?state=all, {per_page:100}) → the same key as the previous line
func Key(rawURL string, params map[string]string) string {
	sum := sha256.Sum256([]byte(canonicalURL(rawURL, params)))
	return hex.EncodeToString(sum[:])
}

func canonicalURL(rawURL string, params map[string]string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URLs never reach the network, so any stable form will do.
		values := make(url.Values, len(params))
		for k, v := range params {
			values.Set(k, v)
		}
		if len(values) == 0 {
			return rawURL
		}
		return rawURL + "?" + values.Encode()
	}

	if u.RawQuery == "" && len(params) == 0 {
		return rawURL
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	// Encode sorts by key.
	u.RawQuery = q.Encode()
	return u.String()
}
