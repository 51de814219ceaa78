package alerts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Alert struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type EntrySignal struct {
	Symbol string
	Price  float64
}

var ErrSkipped = errors.New("рискованная/свинг/лотто идея")

func (a Alert) IsEntry() bool {
	return strings.Contains(strings.ToLower(a.Title), "entering")
}

func (a Alert) IsExit() bool {
	return a.Title == "EXIT"
}

func ParseEntry(a Alert, now time.Time) (EntrySignal, error) {
	desc := strings.ToLower(a.Description)
	if strings.Contains(desc, "risky") || strings.Contains(desc, "swing") || strings.Contains(desc, "lotto") {
		return EntrySignal{}, ErrSkipped
	}

	arr := strings.Fields(a.Description)

	var ticker, strike, contractType, expiry string
	var price float64
	var havePrice bool

	for i, word := range arr {
		if word == "Option:" && i+4 < len(arr) {
			ticker = arr[i+1]
			strike = arr[i+2]
			contractType = arr[i+3]
			expiry = arr[i+4]
		}
		if word == "Entry:" && i+1 < len(arr) {
			raw := arr[i+1]
			if strings.HasPrefix(raw, "@$") {
				raw = raw[2:]
			}
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return EntrySignal{}, fmt.Errorf("Не удалось разобрать цену входа %q: %w", arr[i+1], err)
			}
			price = parsed
			havePrice = true
		}
	}

	if ticker == "" || expiry == "" {
		return EntrySignal{}, fmt.Errorf("В алерте нет блока Option: %q", a.Description)
	}
	if !havePrice {
		return EntrySignal{}, fmt.Errorf("В алерте нет блока Entry: %q", a.Description)
	}

	if ticker == "SPX" {
		ticker = "SPXW"
	}

	dateParts := strings.Split(expiry, "/")
	if len(dateParts) < 2 {
		return EntrySignal{}, fmt.Errorf("Некорректная экспирация: %q", expiry)
	}
	month, err := strconv.Atoi(dateParts[0])
	if err != nil {
		return EntrySignal{}, fmt.Errorf("Некорректная экспирация: %q", expiry)
	}
	day, err := strconv.Atoi(dateParts[1])
	if err != nil {
		return EntrySignal{}, fmt.Errorf("Некорректная экспирация: %q", expiry)
	}
	expiry = fmt.Sprintf("%02d%02d%02d", month, day, now.Year()%100)

	return EntrySignal{
		Symbol: fmt.Sprintf("%s_%s%s%s", ticker, expiry, contractType, strike),
		Price:  price,
	}, nil
}
