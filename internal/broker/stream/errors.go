package stream

import (
	"errors"
	"fmt"
)

type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Логин отклонён брокером: %s", e.Msg)
}

var (
	ErrClosed       = errors.New("сессия закрыта")
	ErrLoginTimeout = errors.New("не дождались подтверждения логина")
	ErrAckTimeout   = errors.New("не дождались подтверждения команды")
)
