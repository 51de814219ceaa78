package notify

import (
	"tdbot/internal/logger"
)

type Kind string

const (
	KindEntryAccepted  Kind = "ENTRY_ACCEPTED"
	KindEntryFailed    Kind = "ENTRY_FAILED"
	KindEntryFilled    Kind = "ENTRY_FILLED"
	KindProfitTaken    Kind = "PROFIT_TAKEN"
	KindStopRaised     Kind = "STOP_RAISED"
	KindReplaceFailed  Kind = "REPLACE_FAILED"
	KindOrderCanceled  Kind = "ORDER_CANCELED"
	KindCancelFailed   Kind = "CANCEL_FAILED"
	KindPositionClosed Kind = "POSITION_CLOSED"
	KindAlertIgnored   Kind = "ALERT_IGNORED"
)

type Notifier interface {
	Event(kind Kind, fields map[string]interface{})
}

type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Event(kind Kind, fields map[string]interface{}) {
	entry := n.log.WithComponent("notify").WithField("kind", string(kind))
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	switch kind {
	case KindEntryFailed, KindReplaceFailed, KindCancelFailed:
		entry.Warn("Событие стратегии.")
	default:
		entry.Info("Событие стратегии.")
	}
}

type Multi []Notifier

func (m Multi) Event(kind Kind, fields map[string]interface{}) {
	for _, n := range m {
		if n != nil {
			n.Event(kind, fields)
		}
	}
}
