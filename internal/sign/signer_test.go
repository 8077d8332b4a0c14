package sign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVectors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		query  string
		body   string
		want   string
	}{
		{
			name:   "get without query",
			method: "GET",
			path:   "/api/v2/spot/account/assets",
			want:   "HMlgu4O6wWLWCJnNqeX3NDuwGqjZgr2rKC3nfWJiRII=",
		},
		{
			name:   "get with query",
			method: "GET",
			path:   "/api/v2/spot/account/assets",
			query:  "coin=USDT",
			want:   "U22PF4Zz2JIrJ2CEq6Pc1jCicgF3EkpE/wgvW9o/WFM=",
		},
		{
			name:   "post with body",
			method: "POST",
			path:   "/api/v2/spot/trade/place-order",
			body:   `{"symbol":"BTCUSDT"}`,
			want:   "aygtq+q4mCfwK3guXeMvGCg+iXbJNe08dS+VXprOEgs=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sign("abc", "1700000000000", tt.method, tt.path, tt.query, tt.body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSign_Deterministic(t *testing.T) {
	a := Sign("secret", "1700000000000", "GET", "/api/v2/spot/market/tickers", "symbol=BTCUSDT", "")
	b := Sign("secret", "1700000000000", "GET", "/api/v2/spot/market/tickers", "symbol=BTCUSDT", "")

	assert.Equal(t, a, b)
}

func TestSign_ByteSensitive(t *testing.T) {
	base := Sign("secret", "1700000000000", "GET", "/api/v2/spot/market/tickers", "symbol=BTCUSDT", "")

	assert.NotEqual(t, base, Sign("secret", "1700000000001", "GET", "/api/v2/spot/market/tickers", "symbol=BTCUSDT", ""))
	assert.NotEqual(t, base, Sign("secret", "1700000000000", "GET", "/api/v2/spot/market/tickers", "symbol=ETHUSDT", ""))
	assert.NotEqual(t, base, Sign("secret", "1700000000000", "GET", "/api/v2/spot/market/tickers", "symbol=BTCUSDT", " "))
	assert.NotEqual(t, base, Sign("other", "1700000000000", "GET", "/api/v2/spot/market/tickers", "symbol=BTCUSDT", ""))
}

func TestSign_UppercasesMethod(t *testing.T) {
	upper := Sign("secret", "1700000000000", "POST", "/api/v2/spot/trade/place-order", "", "{}")
	lower := Sign("secret", "1700000000000", "post", "/api/v2/spot/trade/place-order", "", "{}")

	assert.Equal(t, upper, lower)
}

func TestSign_EmptyQueryOmitsSeparator(t *testing.T) {
	// An empty query must not introduce a trailing "?" into the signed
	// message.
	withEmpty := Sign("secret", "1700000000000", "GET", "/api/v2/spot/account/assets", "", "")
	withQuery := Sign("secret", "1700000000000", "GET", "/api/v2/spot/account/assets", "x=1", "")

	assert.NotEqual(t, withEmpty, withQuery)
}

func TestLoginSign(t *testing.T) {
	got := LoginSign("abc", "1700000000")

	assert.Equal(t, "TIGe90T827QL0ZjLf+8pi04cKBKPdglZNryJf5G+wcQ=", got)
	assert.Equal(t, Sign("abc", "1700000000", "GET", LoginPath, "", ""), got)
}
