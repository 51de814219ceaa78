package rest

import (
	"net/http"
	"sync"
	"time"

	"tdbot/internal/logger"
)

type Client struct {
	baseURL      string
	authURL      string
	clientKey    string
	refreshToken string
	accountID    string

	httpClient *http.Client
	log        *logger.Logger

	mu          sync.Mutex
	accessToken string
	refreshedAt time.Time
}

func New(baseURL, authURL, clientKey, refreshToken, accountID string, log *logger.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		authURL:      authURL,
		clientKey:    clientKey,
		refreshToken: refreshToken,
		accountID:    accountID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (c *Client) AccountID() string {
	return c.accountID
}
