package bitget

import "garuda/pkg/core"

// TickerChannel subscribes to 24h ticker pushes for one instrument.
func TickerChannel(instType core.InstType, instID string) core.Subscription {
	return core.Subscription{InstType: instType, Channel: "ticker", InstID: instID}
}

// TradeChannel subscribes to public trade pushes for one instrument.
func TradeChannel(instType core.InstType, instID string) core.Subscription {
	return core.Subscription{InstType: instType, Channel: "trade", InstID: instID}
}

// CandleChannel subscribes to OHLCV pushes at the given interval
// (1m, 5m, 1H, 1D, ...).
func CandleChannel(instType core.InstType, instID, interval string) core.Subscription {
	return core.Subscription{InstType: instType, Channel: "candle" + interval, InstID: instID}
}

// BooksChannel subscribes to order book pushes. depth selects the
// variant: 0 for full books, otherwise books1, books5 or books15.
func BooksChannel(instType core.InstType, instID string, depth string) core.Subscription {
	channel := "books"
	if depth != "" {
		channel += depth
	}
	return core.Subscription{InstType: instType, Channel: channel, InstID: instID}
}

// AccountChannel subscribes to balance pushes. coin "default" covers
// all currencies. Requires a private session.
func AccountChannel(instType core.InstType, coin string) core.Subscription {
	if coin == "" {
		coin = "default"
	}
	return core.Subscription{InstType: instType, Channel: "account", Coin: coin, Private: true}
}

// OrdersChannel subscribes to order lifecycle pushes. instId "default"
// covers all instruments. Requires a private session.
func OrdersChannel(instType core.InstType, instID string) core.Subscription {
	if instID == "" {
		instID = "default"
	}
	return core.Subscription{InstType: instType, Channel: "orders", InstID: instID, Private: true}
}

// PositionsChannel subscribes to position pushes on futures markets.
// Requires a private session.
func PositionsChannel(instType core.InstType) core.Subscription {
	return core.Subscription{InstType: instType, Channel: "positions", InstID: "default", Private: true}
}

// FillsChannel subscribes to execution pushes. Requires a private
// session.
func FillsChannel(instType core.InstType) core.Subscription {
	return core.Subscription{InstType: instType, Channel: "fill", InstID: "default", Private: true}
}
