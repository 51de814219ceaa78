package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Брокер отзывает access token через полчаса, обновляем за минуту до этого.
const tokenLifetime = 29 * time.Minute

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Since(c.refreshedAt) < tokenLifetime {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)
	form.Set("client_id", c.clientKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("Не удалось создать запрос токена: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Ошибка запроса токена: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Не удалось прочитать ответ токена: %w", err)
	}
	if !isSuccess(resp.StatusCode) {
		return "", fmt.Errorf("Неуспешный статус при обновлении токена: %s", resp.Status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("Не удалось разобрать ответ токена: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("Пустой access token в ответе брокера.")
	}

	c.accessToken = payload.AccessToken
	c.refreshedAt = time.Now()
	c.log.WithComponent("rest").Debug("Access token обновлён.")

	return c.accessToken, nil
}
