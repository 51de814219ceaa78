package rest

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) PlaceOrder(ctx context.Context, order map[string]any) (int, error) {
	path := fmt.Sprintf("/accounts/%s/orders", c.accountID)
	return c.doRequest(ctx, http.MethodPost, path, nil, order, nil)
}

func (c *Client) ReplaceOrder(ctx context.Context, orderKey string, order map[string]any) (int, error) {
	path := fmt.Sprintf("/accounts/%s/orders/%s", c.accountID, orderKey)
	return c.doRequest(ctx, http.MethodPut, path, nil, order, nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderKey string) (int, error) {
	path := fmt.Sprintf("/accounts/%s/orders/%s", c.accountID, orderKey)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

func IsAccepted(status int) bool {
	return isSuccess(status)
}
