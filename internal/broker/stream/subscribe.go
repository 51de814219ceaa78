package stream

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const ackTimeout = 10 * time.Second

func (s *Session) AccountActivity() {
	s.appendRequest("ACCT_ACTIVITY", "SUBS", map[string]string{
		"keys":   s.principal.SubscriptionKey,
		"fields": "0,1,2,3",
	})
}

func (s *Session) QualityOfService(level string) {
	s.appendRequest("ADMIN", "QOS", map[string]string{
		"qoslevel": level,
	})
}

func (s *Session) appendRequest(service, command string, params map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, request{
		Service:    service,
		RequestID:  strconv.Itoa(s.sentCount + len(s.batch) + 1),
		Command:    command,
		Account:    s.principal.AccountID,
		Source:     s.principal.AppID,
		Parameters: params,
	})
}

func (s *Session) FlushRequests() error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	env := envelope{Requests: s.batch}
	s.sentCount += len(s.batch)
	s.batch = nil
	s.mu.Unlock()

	return s.send(env)
}

func (s *Session) Unsubscribe(ctx context.Context, service string) error {
	s.mu.Lock()
	s.unsubCount++
	requestID := strconv.Itoa(s.sentCount + len(s.batch) + s.unsubCount)
	ack := make(chan responseItem, 1)
	s.pending[requestID] = ack
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, requestID)
		s.mu.Unlock()
	}()

	env := envelope{Requests: []request{{
		Service:   strings.ToUpper(service),
		RequestID: requestID,
		Command:   "UNSUBS",
		Account:   s.principal.AccountID,
		Source:    s.principal.AppID,
	}}}

	if err := s.send(env); err != nil {
		return err
	}

	timer := time.NewTimer(ackTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopCh:
		return ErrClosed
	case <-timer.C:
		return ErrAckTimeout
	case resp := <-ack:
		s.logEntry().WithField("service", resp.Service).Info("Отписка подтверждена.")
		return nil
	}
}
