package engine

import (
	"context"
	"sync"

	"tdbot/internal/broker/rest"
	"tdbot/internal/notify"
)

func (e *Engine) EnterPosition(ctx context.Context, symbol string, entryPrice float64) (*Position, error) {
	size := e.cfg.Bot.Size

	statuses := make([]int, size)
	errs := make([]error, size)

	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		order := rest.NewBracketOrder(symbol, entryPrice, e.cfg.Bot.Scale[i], e.cfg.Bot.StopFraction)

		if e.cfg.Runtime.DryRun {
			statuses[i] = 201
			continue
		}

		wg.Add(1)
		go func(i int, order map[string]any) {
			defer wg.Done()
			statuses[i], errs[i] = e.api.PlaceOrder(ctx, order)
		}(i, order)
	}
	wg.Wait()

	accepted := 0
	for i := 0; i < size; i++ {
		if errs[i] == nil && rest.IsAccepted(statuses[i]) {
			accepted++
			e.logEntry().WithField("symbol", symbol).Info("Заявка входа размещена.")
			e.notifier.Event(notify.KindEntryAccepted, map[string]interface{}{
				"symbol": symbol,
				"price":  entryPrice,
			})
			continue
		}
		entry := e.logEntry().WithField("symbol", symbol).WithField("status", statuses[i])
		if errs[i] != nil {
			entry = entry.WithError(errs[i])
		}
		entry.Warn("Заявка входа не размещена.")
		e.notifier.Event(notify.KindEntryFailed, map[string]interface{}{
			"symbol": symbol,
			"status": statuses[i],
		})
	}

	pos := newPosition(symbol)
	e.mu.Lock()
	e.positions = append(e.positions, pos)
	e.mu.Unlock()

	e.logEntry().WithFields(map[string]interface{}{
		"symbol":      symbol,
		"position_id": pos.ID,
		"accepted":    accepted,
		"size":        size,
	}).Info("Позиция зарегистрирована.")

	if accepted < size {
		return pos, &PartialFailure{Accepted: accepted, Requested: size}
	}
	return pos, nil
}
