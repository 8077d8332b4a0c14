package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Encode_Canonical(t *testing.T) {
	params := Params{
		"symbol":      "BTCUSDT",
		"granularity": "1min",
		"limit":       "100",
	}

	// Keys are sorted so the signed string and the wire string are the
	// same bytes on every call.
	assert.Equal(t, "granularity=1min&limit=100&symbol=BTCUSDT", params.Encode())
	assert.Equal(t, params.Encode(), params.Encode())
}

func TestParams_Encode_Empty(t *testing.T) {
	assert.Equal(t, "", Params{}.Encode())
	assert.Equal(t, "", Params(nil).Encode())
}

func TestParams_Encode_EscapesValues(t *testing.T) {
	params := Params{"key": "a b&c"}

	assert.Equal(t, "key=a+b%26c", params.Encode())
}

func TestRequest_Idempotent(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want bool
	}{
		{
			name: "get",
			req:  NewRequest(http.MethodGet, "/api/v2/spot/market/tickers"),
			want: true,
		},
		{
			name: "delete",
			req:  NewRequest(http.MethodDelete, "/api/v2/spot/trade/cancel-order"),
			want: true,
		},
		{
			name: "post without key",
			req:  NewRequest(http.MethodPost, "/api/v2/spot/trade/place-order"),
			want: false,
		},
		{
			name: "post with key",
			req: NewRequest(http.MethodPost, "/api/v2/spot/trade/place-order").
				SetIdempotencyKey("client-oid-1"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Idempotent())
		})
	}
}

func TestRequest_Builders(t *testing.T) {
	req := NewRequest(http.MethodPost, "/api/v2/spot/trade/place-order").
		SetQuery("symbol", "BTCUSDT").
		SetBody([]byte(`{"size":"1"}`)).
		SetAuthenticated(true).
		SetIdempotencyKey("oid-7")

	assert.Equal(t, "BTCUSDT", req.Query["symbol"])
	assert.Equal(t, []byte(`{"size":"1"}`), req.Body)
	assert.True(t, req.Authenticated)
	assert.Equal(t, "oid-7", req.IdempotencyKey)
}
