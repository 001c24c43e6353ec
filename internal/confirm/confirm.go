package confirm

import (
	"net/url"
	"strings"
)

const (
	DefaultType = "signup"

	// MsgMissingToken is shown when a confirmation link carried no token.
	MsgMissingToken = "No confirmation token found in URL. Please check your email and click the confirmation link again."

	legacyMarker = "access_token="
)

type Token struct {
	Value string
	Type  string
}

// Extract finds a confirmation token in a link. The fragment is checked
// first, then the query string, then the legacy form where the token was
// written into the path.
func Extract(path, rawQuery, fragment string) (Token, bool) {
	tok := Token{Type: DefaultType}

	if fragment != "" {
		params, _ := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
		tok.Value = first(params, "access_token", "token")
		if typ := first(params, "type", "token_type"); typ != "" {
			tok.Type = typ
		}
	}

	query, _ := url.ParseQuery(rawQuery)
	if tok.Value == "" {
		tok.Value = first(query, "token", "access_token")
		if typ := query.Get("type"); typ != "" {
			tok.Type = typ
		}
	}

	if tok.Value == "" {
		tok.Value = query.Get("token_hash")
	}

	if tok.Value == "" {
		if _, rest, ok := strings.Cut(path, legacyMarker); ok {
			rest, _, _ = strings.Cut(rest, "&")
			rest, _, _ = strings.Cut(rest, "#")
			if v, err := url.PathUnescape(rest); err == nil {
				tok.Value = v
			}
		}
	}

	tok.Value = strings.TrimSpace(tok.Value)
	return tok, tok.Value != ""
}

func first(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := v.Get(k); s != "" {
			return s
		}
	}
	return ""
}
