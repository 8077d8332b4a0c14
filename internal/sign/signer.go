// Package sign implements the venue's HMAC-SHA256 request signature.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// LoginPath is the pseudo-path signed for the WebSocket login frame.
const LoginPath = "/user/verify"

// Sign computes the signature over one request. The signed message is
// timestamp + METHOD + path + "?" + query + body, with the "?" + query
// part omitted when query is empty. body must be the exact byte
// sequence that will be transmitted; any divergence produces a
// signature mismatch at the venue.
func Sign(secretKey, timestamp, method, path, query, body string) string {
	var b strings.Builder
	b.WriteString(timestamp)
	b.WriteString(strings.ToUpper(method))
	b.WriteString(path)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	b.WriteString(body)

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// LoginSign computes the signature carried in the WebSocket login
// frame: the message is timestamp + "GET" + "/user/verify" with no
// query and no body.
func LoginSign(secretKey, timestamp string) string {
	return Sign(secretKey, timestamp, "GET", LoginPath, "", "")
}
