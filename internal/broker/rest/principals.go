package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type UserPrincipals struct {
	Accounts []struct {
		AccountID         string `json:"accountId"`
		Company           string `json:"company"`
		Segment           string `json:"segment"`
		AccountCdDomainID string `json:"accountCdDomainId"`
	} `json:"accounts"`
	StreamerInfo struct {
		StreamerSocketURL string `json:"streamerSocketUrl"`
		Token             string `json:"token"`
		TokenTimestamp    string `json:"tokenTimestamp"`
		AppID             string `json:"appId"`
		UserGroup         string `json:"userGroup"`
		AccessLevel       string `json:"accessLevel"`
		ACL               string `json:"acl"`
	} `json:"streamerInfo"`
	StreamerSubscriptionKeys struct {
		Keys []struct {
			Key string `json:"key"`
		} `json:"keys"`
	} `json:"streamerSubscriptionKeys"`
}

func (c *Client) GetUserPrincipals(ctx context.Context, fields string) (UserPrincipals, error) {
	params := url.Values{}
	params.Set("fields", fields)

	var principals UserPrincipals
	status, err := c.doRequest(ctx, http.MethodGet, "/userprincipals", params, nil, &principals)
	if err != nil {
		return UserPrincipals{}, err
	}
	if !isSuccess(status) {
		return UserPrincipals{}, fmt.Errorf("Неуспешный статус userprincipals: %d", status)
	}
	if len(principals.Accounts) == 0 {
		return UserPrincipals{}, fmt.Errorf("В ответе userprincipals нет аккаунтов.")
	}

	return principals, nil
}

func StreamCredentials(p UserPrincipals) (url.Values, error) {
	tsMs, err := tokenTimestampMs(p.StreamerInfo.TokenTimestamp)
	if err != nil {
		return nil, err
	}

	creds := url.Values{}
	creds.Set("userid", p.Accounts[0].AccountID)
	creds.Set("token", p.StreamerInfo.Token)
	creds.Set("company", p.Accounts[0].Company)
	creds.Set("segment", p.Accounts[0].Segment)
	creds.Set("cddomain", p.Accounts[0].AccountCdDomainID)
	creds.Set("usergroup", p.StreamerInfo.UserGroup)
	creds.Set("accesslevel", p.StreamerInfo.AccessLevel)
	creds.Set("authorized", "Y")
	creds.Set("timestamp", fmt.Sprintf("%d", tsMs))
	creds.Set("appid", p.StreamerInfo.AppID)
	creds.Set("acl", p.StreamerInfo.ACL)

	return creds, nil
}

func tokenTimestampMs(raw string) (int64, error) {
	layouts := []string{
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z0700",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC().UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("Не удалось разобрать tokenTimestamp: %q", raw)
}
