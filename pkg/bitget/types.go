package bitget

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"garuda/pkg/core"
)

// Ticker is one 24h ticker entry from the market tickers endpoint.
type Ticker struct {
	Symbol      string      `json:"symbol"`
	LastPrice   apd.Decimal `json:"lastPr"`
	BidPrice    apd.Decimal `json:"bidPr"`
	AskPrice    apd.Decimal `json:"askPr"`
	High24h     apd.Decimal `json:"high24h"`
	Low24h      apd.Decimal `json:"low24h"`
	Open24h     apd.Decimal `json:"open"`
	BaseVolume  apd.Decimal `json:"baseVolume"`
	QuoteVolume apd.Decimal `json:"quoteVolume"`
	Change24h   apd.Decimal `json:"change24h"`
	Ts          int64       `json:"ts,string"`
}

// Asset is one spot account balance entry.
type Asset struct {
	Coin      string      `json:"coin"`
	Available apd.Decimal `json:"available"`
	Frozen    apd.Decimal `json:"frozen"`
	Locked    apd.Decimal `json:"locked"`
}

// OrderAck is the acknowledgment returned by order placement and
// cancellation.
type OrderAck struct {
	OrderID   string `json:"orderId"`
	ClientOid string `json:"clientOid"`
}

// Order is one order as reported by the pending and detail endpoints.
type Order struct {
	OrderID     string      `json:"orderId"`
	ClientOid   string      `json:"clientOid"`
	Symbol      string      `json:"symbol"`
	Side        string      `json:"side"`
	OrderType   string      `json:"orderType"`
	Force       string      `json:"force"`
	Price       apd.Decimal `json:"price"`
	Size        apd.Decimal `json:"size"`
	BaseVolume  apd.Decimal `json:"baseVolume"`
	QuoteVolume apd.Decimal `json:"quoteVolume"`
	Status      string      `json:"status"`
	CreatedTime int64       `json:"cTime,string"`
	UpdatedTime int64       `json:"uTime,string"`
}

// Fill is one trade execution from the fills endpoint.
type Fill struct {
	TradeID   string      `json:"tradeId"`
	OrderID   string      `json:"orderId"`
	Symbol    string      `json:"symbol"`
	Side      string      `json:"side"`
	Price     apd.Decimal `json:"priceAvg"`
	Size      apd.Decimal `json:"size"`
	Amount    apd.Decimal `json:"amount"`
	TradeTime int64       `json:"cTime,string"`
}

// BookLevel is one price level of the order book.
type BookLevel struct {
	Price apd.Decimal
	Size  apd.Decimal
}

// OrderBook is a depth snapshot with levels parsed into decimals.
type OrderBook struct {
	Asks []BookLevel
	Bids []BookLevel
	Ts   int64
}

// rawOrderBook matches the wire shape: levels arrive as string pairs.
type rawOrderBook struct {
	Asks [][]string `json:"asks"`
	Bids [][]string `json:"bids"`
	Ts   int64      `json:"ts,string"`
}

// Candle is one OHLCV bar. The venue transmits candles as positional
// string arrays.
type Candle struct {
	Ts          int64
	Open        apd.Decimal
	High        apd.Decimal
	Low         apd.Decimal
	Close       apd.Decimal
	BaseVolume  apd.Decimal
	QuoteVolume apd.Decimal
}

// Position is one futures position from the all-position endpoint.
type Position struct {
	Symbol       string      `json:"symbol"`
	MarginCoin   string      `json:"marginCoin"`
	HoldSide     string      `json:"holdSide"`
	MarginMode   string      `json:"marginMode"`
	Total        apd.Decimal `json:"total"`
	Available    apd.Decimal `json:"available"`
	AvgPrice     apd.Decimal `json:"openPriceAvg"`
	UnrealizedPL apd.Decimal `json:"unrealizedPL"`
	Leverage     apd.Decimal `json:"leverage"`
}

// FuturesAccount is the single-product account summary.
type FuturesAccount struct {
	MarginCoin   string      `json:"marginCoin"`
	Available    apd.Decimal `json:"available"`
	Equity       apd.Decimal `json:"accountEquity"`
	UnrealizedPL apd.Decimal `json:"unrealizedPL"`
	Locked       apd.Decimal `json:"locked"`
}

// decodeData unmarshals an envelope's data payload into dst.
func decodeData(env *core.Envelope, dst any) error {
	if err := sonic.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func parseDecimal(dst *apd.Decimal, s string) error {
	if s == "" {
		*dst = apd.Decimal{}
		return nil
	}
	if _, _, err := apd.BaseContext.SetString(dst, s); err != nil {
		return fmt.Errorf("set decimal from string: %w", err)
	}
	return nil
}

func parseLevels(raw [][]string) ([]BookLevel, error) {
	levels := make([]BookLevel, 0, len(raw))
	for _, pair := range raw {
		if len(pair) < 2 {
			continue
		}
		var level BookLevel
		if err := parseDecimal(&level.Price, pair[0]); err != nil {
			return nil, fmt.Errorf("parse level price: %w", err)
		}
		if err := parseDecimal(&level.Size, pair[1]); err != nil {
			return nil, fmt.Errorf("parse level size: %w", err)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func parseOrderBook(raw *rawOrderBook) (*OrderBook, error) {
	asks, err := parseLevels(raw.Asks)
	if err != nil {
		return nil, fmt.Errorf("parse asks: %w", err)
	}
	bids, err := parseLevels(raw.Bids)
	if err != nil {
		return nil, fmt.Errorf("parse bids: %w", err)
	}
	return &OrderBook{Asks: asks, Bids: bids, Ts: raw.Ts}, nil
}

// parseCandle decodes one positional candle array:
// [ts, open, high, low, close, baseVolume, quoteVolume, ...].
func parseCandle(raw []string) (*Candle, error) {
	if len(raw) < 7 {
		return nil, fmt.Errorf("insufficient candle elements: %d", len(raw))
	}

	var candle Candle
	if _, err := fmt.Sscan(raw[0], &candle.Ts); err != nil {
		return nil, fmt.Errorf("parse candle timestamp: %w", err)
	}

	fields := []struct {
		dst  *apd.Decimal
		src  string
		name string
	}{
		{&candle.Open, raw[1], "open"},
		{&candle.High, raw[2], "high"},
		{&candle.Low, raw[3], "low"},
		{&candle.Close, raw[4], "close"},
		{&candle.BaseVolume, raw[5], "base volume"},
		{&candle.QuoteVolume, raw[6], "quote volume"},
	}
	for _, f := range fields {
		if err := parseDecimal(f.dst, f.src); err != nil {
			return nil, fmt.Errorf("parse candle %s: %w", f.name, err)
		}
	}
	return &candle, nil
}

func parseCandles(raw [][]string) ([]Candle, error) {
	candles := make([]Candle, 0, len(raw))
	for _, entry := range raw {
		candle, err := parseCandle(entry)
		if err != nil {
			return nil, err
		}
		candles = append(candles, *candle)
	}
	return candles, nil
}
