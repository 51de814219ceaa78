package engine

import (
	"strings"

	"github.com/google/uuid"

	"tdbot/internal/models"
)

type keySet map[string]struct{}

func (s keySet) add(key string) {
	s[key] = struct{}{}
}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s keySet) discard(key string) {
	delete(s, key)
}

func (s keySet) keys() []string {
	result := make([]string, 0, len(s))
	for key := range s {
		result = append(result, key)
	}
	return result
}

type Position struct {
	ID        string
	Symbol    string
	LimitBuy  keySet
	LimitSell keySet
	StopSell  keySet
}

func newPosition(symbol string) *Position {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(raw) > 12 {
		raw = raw[:12]
	}
	return &Position{
		ID:        raw,
		Symbol:    symbol,
		LimitBuy:  keySet{},
		LimitSell: keySet{},
		StopSell:  keySet{},
	}
}

func (p *Position) leg(orderType models.OrderType, instruction models.Instruction) keySet {
	switch {
	case orderType == models.OrderTypeLimit && instruction == models.InstructionBuy:
		return p.LimitBuy
	case orderType == models.OrderTypeLimit && instruction == models.InstructionSell:
		return p.LimitSell
	case orderType == models.OrderTypeStop && instruction == models.InstructionSell:
		return p.StopSell
	}
	return nil
}

func (p *Position) Empty() bool {
	return len(p.LimitBuy) == 0 && len(p.LimitSell) == 0 && len(p.StopSell) == 0
}
