package engine

import (
	"context"
	"errors"
	"time"

	"tdbot/internal/alerts"
	"tdbot/internal/notify"
)

func (e *Engine) HandleAlert(ctx context.Context, alert alerts.Alert) {
	switch {
	case alert.IsEntry():
		sig, err := alerts.ParseEntry(alert, time.Now())
		if errors.Is(err, alerts.ErrSkipped) {
			e.logEntry().Info("Рискованная/свинг/лотто идея, пропуск.")
			e.notifier.Event(notify.KindAlertIgnored, map[string]interface{}{
				"title": alert.Title,
			})
			return
		}
		if err != nil {
			e.logEntry().WithError(err).Warn("Не удалось разобрать алерт входа.")
			return
		}
		if _, err := e.EnterPosition(ctx, sig.Symbol, sig.Price); err != nil {
			e.logEntry().WithError(err).Warn("Вход размещён не полностью.")
		}

	case alert.IsExit():
		e.ExitNow(ctx)
	}
}

func (e *Engine) ExitNow(ctx context.Context) {
	e.mu.Lock()
	if len(e.positions) == 0 {
		e.mu.Unlock()
		e.logEntry().Info("Сигнал выхода без открытых позиций, пропуск.")
		return
	}
	pos := e.positions[len(e.positions)-1]

	var commands []Command
	switch {
	case len(pos.LimitSell) == 0 && len(pos.StopSell) == 0 && len(pos.LimitBuy) > 0:
		for _, key := range pos.LimitBuy.keys() {
			commands = append(commands, Command{
				Kind:     CommandCancel,
				OrderKey: key,
				Symbol:   pos.Symbol,
			})
		}
	case len(pos.LimitBuy) == 0 && len(pos.StopSell) > 0 && len(pos.LimitSell) > 0:
		for _, key := range pos.StopSell.keys() {
			commands = append(commands, Command{
				Kind:     CommandMarketExit,
				OrderKey: key,
				Symbol:   pos.Symbol,
			})
		}
	}
	e.mu.Unlock()

	if len(commands) == 0 {
		e.logEntry().Info("Сигнал выхода в промежуточном состоянии позиции, действий нет.")
		return
	}

	for _, cmd := range commands {
		e.dispatch(ctx, cmd)
	}
}
