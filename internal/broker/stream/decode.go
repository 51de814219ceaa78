package stream

import (
	"encoding/xml"
	"fmt"
	"strings"

	"tdbot/internal/models"
)

type orderMessage struct {
	Order struct {
		OrderKey          string `xml:"OrderKey"`
		OrderType         string `xml:"OrderType"`
		OpenClose         string `xml:"OpenClose"`
		OrderInstructions string `xml:"OrderInstructions"`
		Security          struct {
			Symbol string `xml:"Symbol"`
		} `xml:"Security"`
		Pricing struct {
			Limit string `xml:"Limit"`
			Stop  string `xml:"Stop"`
		} `xml:"OrderPricing"`
	} `xml:"Order"`
}

func decodeActivity(rec activityRecord) (models.OrderEvent, bool, error) {
	activity := rec.Activity
	if models.ActivityKind(activity).IsAdministrative() {
		return models.OrderEvent{}, false, nil
	}

	var msg orderMessage
	if err := xml.Unmarshal([]byte(rec.Payload), &msg); err != nil {
		return models.OrderEvent{}, false, fmt.Errorf("Не удалось разобрать XML активности: %w", err)
	}

	order := msg.Order
	if order.OrderKey == "" {
		return models.OrderEvent{}, false, fmt.Errorf("В записи активности нет OrderKey.")
	}
	if order.OrderType == "" {
		return models.OrderEvent{}, false, fmt.Errorf("В записи активности нет OrderType.")
	}

	price := models.PriceMarket
	if order.OrderType != string(models.OrderTypeMarket) {
		switch models.OrderType(order.OrderType) {
		case models.OrderTypeLimit:
			price = order.Pricing.Limit
		case models.OrderTypeStop:
			price = order.Pricing.Stop
		}
		if price == "" || price == models.PriceMarket {
			return models.OrderEvent{}, false, fmt.Errorf("Нет цены для ордера типа %s.", order.OrderType)
		}
	}

	// У ордерных активностей отрезаем префикс Order: OrderFill -> Fill.
	if strings.HasPrefix(activity, "Order") {
		activity = activity[5:]
	}

	return models.OrderEvent{
		Activity:    models.ActivityKind(activity),
		OrderType:   models.OrderType(order.OrderType),
		Instruction: models.Instruction(order.OrderInstructions),
		OpenClose:   order.OpenClose,
		OrderKey:    order.OrderKey,
		Price:       price,
		Symbol:      order.Security.Symbol,
	}, true, nil
}
