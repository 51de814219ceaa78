package engine

import (
	"math"
	"strconv"

	"tdbot/internal/models"
	"tdbot/internal/notify"
)

type CommandKind string

const (
	CommandRaiseStop  CommandKind = "RAISE_STOP"
	CommandMarketExit CommandKind = "MARKET_EXIT"
	CommandCancel     CommandKind = "CANCEL"
)

type Command struct {
	Kind      CommandKind
	OrderKey  string
	Symbol    string
	StopPrice string
}

type note struct {
	kind   notify.Kind
	fields map[string]interface{}
}

func (e *Engine) applyEvent(ev models.OrderEvent) ([]Command, []note) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.positions) == 0 {
		return nil, nil
	}

	var commands []Command
	var notes []note

	switch ev.Activity {
	case models.ActivityEntryRequest:
		pos := e.entryTarget(ev.Symbol)
		if set := pos.leg(ev.OrderType, ev.Instruction); set != nil {
			set.add(ev.OrderKey)
			e.byKey[ev.OrderKey] = pos
		}

	case models.ActivityFill, models.ActivityCancelRequest:
		if ev.Activity == models.ActivityFill && ev.OrderType == models.OrderTypeLimit {
			switch ev.Instruction {
			case models.InstructionBuy:
				notes = append(notes, note{notify.KindEntryFilled, eventFields(ev)})
			case models.InstructionSell:
				notes = append(notes, note{notify.KindProfitTaken, eventFields(ev)})
			}
		}
		if !ev.IsMarketPrice() {
			if pos := e.resolve(ev.OrderKey); pos != nil {
				if set := pos.leg(ev.OrderType, ev.Instruction); set != nil {
					set.discard(ev.OrderKey)
				}
				delete(e.byKey, ev.OrderKey)
			}
		}

	case models.ActivityUROUT:
		pos := e.resolve(ev.OrderKey)
		if pos == nil {
			break
		}
		if ev.OrderType == models.OrderTypeStop && ev.Instruction == models.InstructionSell {
			// Снятый стоп сначала убираем, остальное решает размер
			// множества тейков.
			pos.StopSell.discard(ev.OrderKey)
			delete(e.byKey, ev.OrderKey)

			if len(pos.LimitSell) == e.cfg.Bot.Size-1 {
				newStop, ok := raiseStopPrice(ev.Price, e.cfg.Bot.StopRaise)
				if !ok {
					e.logEntry().WithFields(map[string]interface{}{
						"order_key": ev.OrderKey,
						"price":     ev.Price,
					}).Warn("Не удалось посчитать новый стоп, перестановка пропущена.")
					break
				}
				for _, key := range pos.StopSell.keys() {
					commands = append(commands, Command{
						Kind:      CommandRaiseStop,
						OrderKey:  key,
						Symbol:    pos.Symbol,
						StopPrice: newStop,
					})
					pos.StopSell.discard(key)
					delete(e.byKey, key)
				}
			}
			break
		}
		if set := pos.leg(ev.OrderType, ev.Instruction); set != nil && set.has(ev.OrderKey) {
			set.discard(ev.OrderKey)
			delete(e.byKey, ev.OrderKey)
		}
	}

	notes = append(notes, e.evictEmpty()...)

	return commands, notes
}

func (e *Engine) entryTarget(symbol string) *Position {
	for i := len(e.positions) - 1; i >= 0; i-- {
		if e.positions[i].Symbol == symbol {
			return e.positions[i]
		}
	}
	return e.positions[len(e.positions)-1]
}

func (e *Engine) resolve(orderKey string) *Position {
	if pos, ok := e.byKey[orderKey]; ok {
		return pos
	}
	if len(e.positions) == 0 {
		return nil
	}
	return e.positions[len(e.positions)-1]
}

func (e *Engine) evictEmpty() []note {
	var notes []note
	kept := e.positions[:0]
	for _, pos := range e.positions {
		if pos.Empty() {
			notes = append(notes, note{notify.KindPositionClosed, map[string]interface{}{
				"symbol":      pos.Symbol,
				"position_id": pos.ID,
			}})
			continue
		}
		kept = append(kept, pos)
	}
	e.positions = kept
	return notes
}

func raiseStopPrice(price string, factor float64) (string, bool) {
	value, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return "", false
	}
	rounded := math.Round(value*factor*10) / 10
	return strconv.FormatFloat(rounded, 'f', 1, 64) + "0", true
}

func eventFields(ev models.OrderEvent) map[string]interface{} {
	return map[string]interface{}{
		"symbol":    ev.Symbol,
		"order_key": ev.OrderKey,
		"price":     ev.Price,
	}
}
