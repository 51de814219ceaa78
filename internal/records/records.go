package records

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"tdbot/internal/logger"
	"tdbot/internal/notify"
)

type TradeRecord struct {
	Time     string `csv:"Time"`
	Event    string `csv:"Event"`
	Symbol   string `csv:"Symbol"`
	Price    string `csv:"Price"`
	OrderKey string `csv:"OrderKey"`
}

type Journal struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

func NewJournal(path string, log *logger.Logger) *Journal {
	return &Journal{path: path, log: log}
}

func (j *Journal) Event(kind notify.Kind, fields map[string]interface{}) {
	switch kind {
	case notify.KindEntryFilled, notify.KindProfitTaken, notify.KindStopRaised, notify.KindPositionClosed:
	default:
		return
	}

	rec := TradeRecord{
		Time:     time.Now().Format(time.RFC3339),
		Event:    string(kind),
		Symbol:   str(fields["symbol"]),
		Price:    str(fields["price"]),
		OrderKey: str(fields["order_key"]),
	}

	if err := j.append(rec); err != nil {
		j.log.WithComponent("records").WithError(err).Warn("Не удалось записать сделку в журнал.")
	}
}

func (j *Journal) append(rec TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, statErr := os.Stat(j.path)
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("Не удалось открыть журнал сделок: %w", err)
	}
	defer f.Close()

	rows := []TradeRecord{rec}
	if os.IsNotExist(statErr) {
		return gocsv.Marshal(&rows, f)
	}
	return gocsv.MarshalWithoutHeaders(&rows, f)
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
