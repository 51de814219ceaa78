package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdbot/internal/models"
	"tdbot/internal/notify"
)

func fill(orderType models.OrderType, instruction models.Instruction, key, price, symbol string) models.OrderEvent {
	return models.OrderEvent{
		Activity:    models.ActivityFill,
		OrderType:   orderType,
		Instruction: instruction,
		OrderKey:    key,
		Price:       price,
		Symbol:      symbol,
	}
}

func urout(orderType models.OrderType, instruction models.Instruction, key, price, symbol string) models.OrderEvent {
	return models.OrderEvent{
		Activity:    models.ActivityUROUT,
		OrderType:   orderType,
		Instruction: instruction,
		OrderKey:    key,
		Price:       price,
		Symbol:      symbol,
	}
}

func TestApplyEventWithoutPositions(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})

	commands, notes := e.applyEvent(fill(models.OrderTypeLimit, models.InstructionBuy, "100", "1.25", "SPXW_072826C5400"))

	assert.Empty(t, commands)
	assert.Empty(t, notes)
}

func TestEntryRequestAttachesKeyToNewestPosition(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})
	pos := seedPosition(e, "SPXW_072826C5400", nil, nil, nil)

	commands, notes := e.applyEvent(models.OrderEvent{
		Activity:    models.ActivityEntryRequest,
		OrderType:   models.OrderTypeLimit,
		Instruction: models.InstructionBuy,
		OrderKey:    "100",
		Price:       "1.25",
		Symbol:      "SPXW_072826C5400",
	})

	assert.Empty(t, commands)
	assert.Empty(t, notes)
	assert.True(t, pos.LimitBuy.has("100"))
	assert.Same(t, pos, e.byKey["100"])
}

func TestFillRemovesKeyAndReportsEntry(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})
	pos := seedPosition(e, "SPXW_072826C5400", []string{"100"}, []string{"200"}, []string{"300"})

	commands, notes := e.applyEvent(fill(models.OrderTypeLimit, models.InstructionBuy, "100", "1.25", "SPXW_072826C5400"))

	assert.Empty(t, commands)
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindEntryFilled, notes[0].kind)
	assert.False(t, pos.LimitBuy.has("100"))
	assert.NotContains(t, e.byKey, "100")
}

// Полный жизненный цикл на два контракта: входы исполнены, первый тейк
// снял свой стоп, оставшийся стоп переставляется выше, второй тейк
// закрывает позицию.
func TestLifecycleStopRaiseAndEviction(t *testing.T) {
	rec := &recorder{}
	e := newTestEngine(2, &fakeAPI{}, rec)
	sym := "SPXW_072826C5400"
	pos := seedPosition(e, sym,
		[]string{"A", "B"},
		[]string{"C", "D"},
		[]string{"E", "F"},
	)

	commands, _ := e.applyEvent(fill(models.OrderTypeLimit, models.InstructionBuy, "A", "1.00", sym))
	assert.Empty(t, commands)
	commands, _ = e.applyEvent(fill(models.OrderTypeLimit, models.InstructionBuy, "B", "1.00", sym))
	assert.Empty(t, commands)
	assert.Empty(t, pos.LimitBuy)

	commands, notes := e.applyEvent(fill(models.OrderTypeLimit, models.InstructionSell, "C", "1.20", sym))
	assert.Empty(t, commands)
	require.Len(t, notes, 1)
	assert.Equal(t, notify.KindProfitTaken, notes[0].kind)

	// OCO снял стоп первого контракта: остался один тейк, значит
	// второй стоп едет на цену снятого x1.35.
	commands, notes = e.applyEvent(urout(models.OrderTypeStop, models.InstructionSell, "E", "0.70", sym))
	require.Len(t, commands, 1)
	assert.Equal(t, CommandRaiseStop, commands[0].Kind)
	assert.Equal(t, "F", commands[0].OrderKey)
	assert.Equal(t, "0.90", commands[0].StopPrice)
	assert.Empty(t, notes)
	assert.Empty(t, pos.StopSell)

	// Последний тейк исполнен, позиция пуста и выселяется.
	_, notes = e.applyEvent(fill(models.OrderTypeLimit, models.InstructionSell, "D", "1.20", sym))
	require.Len(t, notes, 2)
	assert.Equal(t, notify.KindProfitTaken, notes[0].kind)
	assert.Equal(t, notify.KindPositionClosed, notes[1].kind)
	assert.Equal(t, 0, e.openPositions())
}

func TestUROUTWithoutStopRaiseJustDiscards(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})
	pos := seedPosition(e, "AAPL_072826C230", []string{"A", "B"}, nil, nil)

	commands, notes := e.applyEvent(urout(models.OrderTypeLimit, models.InstructionBuy, "A", "1.00", pos.Symbol))

	assert.Empty(t, commands)
	assert.Empty(t, notes)
	assert.False(t, pos.LimitBuy.has("A"))
	assert.True(t, pos.LimitBuy.has("B"))
}

func TestUROUTStopWithoutConditionNoRaise(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})
	// Два тейка ещё живы: условие len(LimitSell) == size-1 не выполнено.
	pos := seedPosition(e, "AAPL_072826C230", nil, []string{"C", "D"}, []string{"E", "F"})

	commands, _ := e.applyEvent(urout(models.OrderTypeStop, models.InstructionSell, "E", "0.70", pos.Symbol))

	assert.Empty(t, commands)
	assert.False(t, pos.StopSell.has("E"))
	assert.True(t, pos.StopSell.has("F"))
}

func TestMarketFillDoesNotTouchSets(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})
	pos := seedPosition(e, "AAPL_072826C230", nil, []string{"C"}, []string{"E"})

	commands, notes := e.applyEvent(fill(models.OrderTypeMarket, models.InstructionSell, "E", models.PriceMarket, pos.Symbol))

	assert.Empty(t, commands)
	assert.Empty(t, notes)
	assert.True(t, pos.StopSell.has("E"))
	assert.Equal(t, 1, e.openPositions())
}

func TestResolveUnknownKeyFallsBackToNewest(t *testing.T) {
	e := newTestEngine(2, &fakeAPI{}, &recorder{})
	seedPosition(e, "AAPL_072826C230", []string{"A"}, nil, nil)
	newest := seedPosition(e, "SPXW_072826C5400", []string{"X"}, nil, nil)

	// Ключ "Z" трекеру не знаком: событие уходит в свежую позицию.
	e.applyEvent(urout(models.OrderTypeLimit, models.InstructionBuy, "Z", "1.00", "SPXW_072826C5400"))

	assert.True(t, newest.LimitBuy.has("X"))
	assert.Equal(t, 2, e.openPositions())
}

func TestRaiseStopPrice(t *testing.T) {
	price, ok := raiseStopPrice("0.70", 1.35)
	require.True(t, ok)
	assert.Equal(t, "0.90", price)

	price, ok = raiseStopPrice("2.00", 1.35)
	require.True(t, ok)
	assert.Equal(t, "2.70", price)

	_, ok = raiseStopPrice(models.PriceMarket, 1.35)
	assert.False(t, ok)
}

func TestDispatchRaiseStop(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	e := newTestEngine(2, api, rec)

	e.dispatch(context.Background(), Command{
		Kind:      CommandRaiseStop,
		OrderKey:  "F",
		Symbol:    "SPXW_072826C5400",
		StopPrice: "0.90",
	})

	require.Len(t, api.replaced, 1)
	assert.Equal(t, "F", api.replaced[0].OrderKey)
	assert.Equal(t, "0.90", api.replaced[0].Order["stopPrice"])
	assert.Equal(t, 1, rec.count(notify.KindStopRaised))
}

func TestDispatchReportsRejectedReplace(t *testing.T) {
	api := &fakeAPI{statuses: []int{400}}
	rec := &recorder{}
	e := newTestEngine(2, api, rec)

	e.dispatch(context.Background(), Command{
		Kind:      CommandRaiseStop,
		OrderKey:  "F",
		Symbol:    "SPXW_072826C5400",
		StopPrice: "0.90",
	})

	assert.Equal(t, 0, rec.count(notify.KindStopRaised))
	assert.Equal(t, 1, rec.count(notify.KindReplaceFailed))
}

func TestDispatchDryRunSkipsAPI(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(2, api, &recorder{})
	e.cfg.Runtime.DryRun = true

	e.dispatch(context.Background(), Command{Kind: CommandCancel, OrderKey: "A"})

	assert.Empty(t, api.canceled)
}
