package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"tdbot/internal/config"
	"tdbot/internal/logger"
	"tdbot/internal/notify"
)

type OrderAPI interface {
	PlaceOrder(ctx context.Context, order map[string]any) (int, error)
	ReplaceOrder(ctx context.Context, orderKey string, order map[string]any) (int, error)
	CancelOrder(ctx context.Context, orderKey string) (int, error)
}

type Engine struct {
	cfg      *config.Config
	api      OrderAPI
	notifier notify.Notifier
	log      *logger.Logger

	mu        sync.Mutex
	positions []*Position
	byKey     map[string]*Position
}

func New(cfg *config.Config, api OrderAPI, notifier notify.Notifier, log *logger.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		api:      api,
		notifier: notifier,
		log:      log,
		byKey:    map[string]*Position{},
	}
}

type PartialFailure struct {
	Accepted  int
	Requested int
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("Принято %d из %d заявок входа.", e.Accepted, e.Requested)
}

func (e *Engine) logEntry() *logrus.Entry {
	return e.log.WithComponent("engine")
}

func (e *Engine) openPositions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.positions)
}
