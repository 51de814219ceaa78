package engine

import (
	"context"
	"sync"

	"tdbot/internal/config"
	"tdbot/internal/logger"
	"tdbot/internal/notify"
)

type replaceCall struct {
	OrderKey string
	Order    map[string]any
}

// fakeAPI отдаёт статусы по порядку вызовов и запоминает всё, что в него
// отправили.
type fakeAPI struct {
	mu       sync.Mutex
	statuses []int
	err      error

	placed   []map[string]any
	replaced []replaceCall
	canceled []string
}

func (f *fakeAPI) next() int {
	if len(f.statuses) == 0 {
		return 201
	}
	status := f.statuses[0]
	f.statuses = f.statuses[1:]
	return status
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, order map[string]any) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, order)
	return f.next(), f.err
}

func (f *fakeAPI) ReplaceOrder(ctx context.Context, orderKey string, order map[string]any) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = append(f.replaced, replaceCall{OrderKey: orderKey, Order: order})
	return f.next(), f.err
}

func (f *fakeAPI) CancelOrder(ctx context.Context, orderKey string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, orderKey)
	return f.next(), f.err
}

type recordedEvent struct {
	Kind   notify.Kind
	Fields map[string]interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Event(kind notify.Kind, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Kind: kind, Fields: fields})
}

func (r *recorder) count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func testConfig(size int) *config.Config {
	return &config.Config{
		Bot: config.BotConfig{
			Size:         size,
			StopFraction: 0.70,
			Scale:        []float64{1.10, 1.20, 1.60, 2.00, 2.50, 3.00},
			StopRaise:    1.35,
		},
	}
}

func newTestEngine(size int, api *fakeAPI, rec *recorder) *Engine {
	log := logger.New(logger.Config{Level: "error"})
	return New(testConfig(size), api, rec, log)
}

// Позиция с заранее известными ключами, минуя залп входа.
func seedPosition(e *Engine, symbol string, limitBuy, limitSell, stopSell []string) *Position {
	pos := newPosition(symbol)
	for _, key := range limitBuy {
		pos.LimitBuy.add(key)
		e.byKey[key] = pos
	}
	for _, key := range limitSell {
		pos.LimitSell.add(key)
		e.byKey[key] = pos
	}
	for _, key := range stopSell {
		pos.StopSell.add(key)
		e.byKey[key] = pos
	}
	e.positions = append(e.positions, pos)
	return pos
}
