package stream

import (
	"bytes"
	"encoding/json"
)

// Битые байты, которые сервер иногда подмешивает в XML внутри JSON.
var badBytes = []byte{0xef, 0xbf, 0xbd}

func (s *Session) readLoop() {
	defer close(s.events)
	s.logEntry().Debug("readLoop запущен.")

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.stopCh:
			default:
				s.logEntry().WithError(err).Warn("Ошибка чтения стрима, закрываем сессию.")
			}
			s.Close()
			return
		}

		f, err := parseFrame(data)
		if err != nil {
			s.logEntry().WithError(err).WithField("raw", string(data)).Warn("Не удалось разобрать кадр стрима.")
			continue
		}

		for _, item := range f.Response {
			s.routeResponse(item)
		}

		for _, block := range f.Data {
			for _, rec := range block.Content {
				event, ok, err := decodeActivity(rec)
				if err != nil {
					s.logEntry().WithError(err).WithFields(map[string]interface{}{
						"activity": rec.Activity,
						"payload":  rec.Payload,
					}).Warn("Не удалось разобрать запись активности, пропуск.")
					continue
				}
				if !ok {
					continue
				}
				select {
				case s.events <- event:
				case <-s.stopCh:
					return
				}
			}
		}
	}
}

func parseFrame(data []byte) (frame, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err == nil {
		return f, nil
	}

	cleaned := bytes.ReplaceAll(data, badBytes, []byte(`"None"`))
	if err := json.Unmarshal(cleaned, &f); err != nil {
		return frame{}, err
	}
	return f, nil
}

func (s *Session) routeResponse(item responseItem) {
	s.mu.Lock()
	awaitingLogin := s.state == StateAwaitingLoginAck
	ack := s.pending[item.RequestID]
	s.mu.Unlock()

	if awaitingLogin {
		if item.Content.Code == 3 || (item.Service == "ADMIN" && item.Command == "LOGIN") {
			select {
			case s.loginCh <- item:
			default:
			}
			return
		}
	}

	if ack != nil {
		select {
		case ack <- item:
		default:
		}
		return
	}

	s.logEntry().WithFields(map[string]interface{}{
		"service": item.Service,
		"command": item.Command,
		"code":    item.Content.Code,
	}).Debug("Служебный ответ стрима.")
}
