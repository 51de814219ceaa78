package models

import "strconv"

type ActivityKind string
type OrderType string
type Instruction string

const (
	ActivitySubscribed    ActivityKind = "SUBSCRIBED"
	ActivityTransaction   ActivityKind = "TransactionTrade"
	ActivityRoute         ActivityKind = "OrderRoute"
	ActivityEntryRequest  ActivityKind = "EntryRequest"
	ActivityFill          ActivityKind = "Fill"
	ActivityCancelRequest ActivityKind = "CancelRequest"
	ActivityUROUT         ActivityKind = "UROUT"

	OrderTypeLimit  OrderType = "Limit"
	OrderTypeStop   OrderType = "Stop"
	OrderTypeMarket OrderType = "Market"

	InstructionBuy  Instruction = "Buy"
	InstructionSell Instruction = "Sell"

	PriceMarket = "MARKET"
)

type OrderEvent struct {
	Activity    ActivityKind `json:"activity"`
	OrderType   OrderType    `json:"order_type"`
	Instruction Instruction  `json:"instruction"`
	OpenClose   string       `json:"open_close"`
	OrderKey    string       `json:"order_key"`
	Price       string       `json:"price"`
	Symbol      string       `json:"symbol"`
}

func (e OrderEvent) IsMarketPrice() bool {
	return e.Price == PriceMarket
}

func (e OrderEvent) PriceFloat() (float64, error) {
	return strconv.ParseFloat(e.Price, 64)
}

func (k ActivityKind) IsAdministrative() bool {
	switch k {
	case ActivitySubscribed, ActivityTransaction, ActivityRoute:
		return true
	}
	return false
}
