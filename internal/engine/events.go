package engine

import (
	"context"

	"tdbot/internal/broker/rest"
	"tdbot/internal/models"
	"tdbot/internal/notify"
)

func (e *Engine) Run(ctx context.Context, events <-chan models.OrderEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				e.logEntry().Warn("Канал событий стрима закрыт.")
				return
			}
			e.handleEvent(ctx, ev)
		}
	}
}

func (e *Engine) handleEvent(ctx context.Context, ev models.OrderEvent) {
	e.logEntry().WithFields(map[string]interface{}{
		"activity":    ev.Activity,
		"type":        ev.OrderType,
		"instruction": ev.Instruction,
		"open_close":  ev.OpenClose,
		"symbol":      ev.Symbol,
		"price":       ev.Price,
		"order_key":   ev.OrderKey,
	}).Info("Событие ордера.")

	commands, notes := e.applyEvent(ev)

	for _, n := range notes {
		e.notifier.Event(n.kind, n.fields)
	}

	for _, cmd := range commands {
		e.dispatch(ctx, cmd)
	}
}

func (e *Engine) dispatch(ctx context.Context, cmd Command) {
	if e.cfg.Runtime.DryRun {
		e.logEntry().WithFields(map[string]interface{}{
			"kind":      cmd.Kind,
			"order_key": cmd.OrderKey,
			"symbol":    cmd.Symbol,
			"stop":      cmd.StopPrice,
		}).Info("dry_run: команда не отправлена.")
		return
	}

	switch cmd.Kind {
	case CommandRaiseStop:
		status, err := e.api.ReplaceOrder(ctx, cmd.OrderKey, rest.NewStopReplace(cmd.Symbol, cmd.StopPrice))
		if err == nil && rest.IsAccepted(status) {
			e.logEntry().WithFields(map[string]interface{}{
				"order_key": cmd.OrderKey,
				"stop":      cmd.StopPrice,
			}).Info("Стоп переставлен выше.")
			e.notifier.Event(notify.KindStopRaised, map[string]interface{}{
				"symbol":    cmd.Symbol,
				"order_key": cmd.OrderKey,
				"price":     cmd.StopPrice,
			})
			return
		}
		e.reportFailure(notify.KindReplaceFailed, cmd, status, err)

	case CommandMarketExit:
		status, err := e.api.ReplaceOrder(ctx, cmd.OrderKey, rest.NewMarketSellReplace(cmd.Symbol))
		if err == nil && rest.IsAccepted(status) {
			e.logEntry().WithField("order_key", cmd.OrderKey).Info("Стоп заменён рыночной продажей.")
			return
		}
		e.reportFailure(notify.KindReplaceFailed, cmd, status, err)

	case CommandCancel:
		status, err := e.api.CancelOrder(ctx, cmd.OrderKey)
		if err == nil && rest.IsAccepted(status) {
			e.logEntry().WithField("order_key", cmd.OrderKey).Info("Ордер отменён.")
			e.notifier.Event(notify.KindOrderCanceled, map[string]interface{}{
				"symbol":    cmd.Symbol,
				"order_key": cmd.OrderKey,
			})
			return
		}
		e.reportFailure(notify.KindCancelFailed, cmd, status, err)
	}
}

func (e *Engine) reportFailure(kind notify.Kind, cmd Command, status int, err error) {
	entry := e.logEntry().WithFields(map[string]interface{}{
		"kind":      cmd.Kind,
		"order_key": cmd.OrderKey,
		"status":    status,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("Мутация ордера не прошла.")

	e.notifier.Event(kind, map[string]interface{}{
		"symbol":    cmd.Symbol,
		"order_key": cmd.OrderKey,
		"status":    status,
	})
}
