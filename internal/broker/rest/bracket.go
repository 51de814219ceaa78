package rest

import (
	"fmt"
	"math"
	"strconv"
)

func NewBracketOrder(symbol string, entryPrice, scale, stopFraction float64) map[string]any {
	entry := fmt.Sprintf("%.2f", entryPrice)
	scalePrice := formatRound2(entryPrice * scale)
	stopPrice := formatRound2(entryPrice * stopFraction)

	return map[string]any{
		"orderType":         "LIMIT",
		"session":           "NORMAL",
		"price":             entry,
		"duration":          "DAY",
		"orderStrategyType": "TRIGGER",
		"orderLegCollection": []map[string]any{
			optionLeg("BUY_TO_OPEN", symbol),
		},
		"childOrderStrategies": []map[string]any{
			{
				"orderStrategyType": "OCO",
				"childOrderStrategies": []map[string]any{
					{
						"orderStrategyType": "SINGLE",
						"session":           "NORMAL",
						"duration":          "DAY",
						"orderType":         "LIMIT",
						"price":             scalePrice,
						"orderLegCollection": []map[string]any{
							optionLeg("SELL_TO_CLOSE", symbol),
						},
					},
					{
						"orderStrategyType": "SINGLE",
						"session":           "NORMAL",
						"duration":          "DAY",
						"orderType":         "STOP",
						"stopPrice":         stopPrice,
						"orderLegCollection": []map[string]any{
							optionLeg("SELL_TO_CLOSE", symbol),
						},
					},
				},
			},
		},
	}
}

func NewStopReplace(symbol, stopPrice string) map[string]any {
	return map[string]any{
		"orderStrategyType": "SINGLE",
		"session":           "NORMAL",
		"duration":          "DAY",
		"orderType":         "STOP",
		"stopPrice":         stopPrice,
		"orderLegCollection": []map[string]any{
			optionLeg("SELL_TO_CLOSE", symbol),
		},
	}
}

func NewMarketSellReplace(symbol string) map[string]any {
	return map[string]any{
		"orderStrategyType": "SINGLE",
		"session":           "NORMAL",
		"duration":          "DAY",
		"orderType":         "MARKET",
		"orderLegCollection": []map[string]any{
			optionLeg("SELL_TO_CLOSE", symbol),
		},
	}
}

func optionLeg(instruction, symbol string) map[string]any {
	return map[string]any{
		"quantity":    1,
		"instruction": instruction,
		"instrument": map[string]any{
			"assetType": "OPTION",
			"symbol":    symbol,
		},
	}
}

func formatRound2(value float64) string {
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64)
}
