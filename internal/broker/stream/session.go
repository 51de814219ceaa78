package stream

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tdbot/internal/logger"
	"tdbot/internal/models"
)

const loginTimeout = 15 * time.Second

func New(socketURL string, principal Principal, credentials url.Values, log *logger.Logger) *Session {
	return &Session{
		url:         socketURL,
		principal:   principal,
		credentials: credentials,
		log:         log,
		events:      make(chan models.OrderEvent, 100),
		pending:     make(map[string]chan responseItem),
		loginCh:     make(chan responseItem, 1),
		stopCh:      make(chan struct{}),
		state:       StateDisconnected,
	}
}

func (s *Session) Connect(ctx context.Context) error {
	s.setState(StateConnecting)
	s.logEntry().WithField("url", s.url).Info("Подключение к стриму.")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("Не удалось подключиться к стриму: %w", err)
	}

	s.conn = conn
	s.conn.SetReadLimit(2 << 20)
	s.setState(StateAwaitingLoginAck)

	go s.readLoop()

	login := envelope{Requests: []request{{
		Service:   "ADMIN",
		RequestID: "0",
		Command:   "LOGIN",
		Account:   s.principal.AccountID,
		Source:    s.principal.AppID,
		Parameters: map[string]string{
			"credential": s.credentials.Encode(),
			"token":      s.principal.Token,
			"version":    "1.0",
		},
	}}}

	if err := s.send(login); err != nil {
		s.Close()
		return err
	}

	timer := time.NewTimer(loginTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.Close()
		return ctx.Err()
	case <-s.stopCh:
		// Сервер мог успеть ответить отказом до закрытия соединения.
		select {
		case resp := <-s.loginCh:
			if resp.Content.Code == 3 {
				return &AuthError{Msg: resp.Content.Msg}
			}
		default:
		}
		return fmt.Errorf("Соединение закрылось до подтверждения логина: %w", ErrClosed)
	case <-timer.C:
		s.Close()
		return ErrLoginTimeout
	case resp := <-s.loginCh:
		if resp.Content.Code == 3 {
			s.Close()
			return &AuthError{Msg: resp.Content.Msg}
		}
	}

	s.setState(StateReady)
	s.logEntry().Info("Стрим авторизован.")

	go s.heartbeat()

	return nil
}

func (s *Session) Events() <-chan models.OrderEvent {
	return s.events
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) Close() {
	s.stopOnce.Do(func() {
		s.setState(StateClosing)
		close(s.stopCh)
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.setState(StateClosed)
		s.logEntry().Info("Сессия стрима закрыта.")
	})
}

func (s *Session) heartbeat() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			s.writeMu.Unlock()
			if err != nil {
				s.logEntry().WithError(err).Warn("Heartbeat не прошёл, закрываем сессию.")
				s.Close()
				return
			}
		}
	}
}

func (s *Session) send(env envelope) error {
	select {
	case <-s.stopCh:
		return ErrClosed
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("Не удалось отправить запрос в стрим: %w", err)
	}
	return nil
}

func (s *Session) logEntry() *logrus.Entry {
	return s.log.WithComponent("stream")
}
