package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdbot/internal/logger"
)

const principalsPayload = `{
	"accounts": [{
		"accountId": "ACC123",
		"company": "AMER",
		"segment": "AMER",
		"accountCdDomainId": "A000000012345678"
	}],
	"streamerInfo": {
		"streamerSocketUrl": "streamer.example.com",
		"token": "stream-token",
		"tokenTimestamp": "2026-07-28T10:30:00+0000",
		"appId": "APP",
		"userGroup": "ACCT",
		"accessLevel": "ACCT",
		"acl": "acl-string"
	},
	"streamerSubscriptionKeys": {
		"keys": [{"key": "sub-key-1"}]
	}
}`

func TestGetUserPrincipals(t *testing.T) {
	var gotPath, gotFields string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"access-abc"}`))
	})
	mux.HandleFunc("/userprincipals", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		w.Write([]byte(principalsPayload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := New(srv.URL, srv.URL+"/token", "key", "refresh", "ACC123", logger.New(logger.Config{Level: "error"}))

	principals, err := client.GetUserPrincipals(context.Background(), "streamerConnectionInfo,streamerSubscriptionKeys")

	require.NoError(t, err)
	assert.Equal(t, "/userprincipals", gotPath)
	assert.Equal(t, "streamerConnectionInfo,streamerSubscriptionKeys", gotFields)
	assert.Equal(t, "ACC123", principals.Accounts[0].AccountID)
	assert.Equal(t, "streamer.example.com", principals.StreamerInfo.StreamerSocketURL)
	assert.Equal(t, "sub-key-1", principals.StreamerSubscriptionKeys.Keys[0].Key)
}

func TestStreamCredentials(t *testing.T) {
	var principals UserPrincipals
	require.NoError(t, json.Unmarshal([]byte(principalsPayload), &principals))

	creds, err := StreamCredentials(principals)

	require.NoError(t, err)
	assert.Equal(t, "ACC123", creds.Get("userid"))
	assert.Equal(t, "stream-token", creds.Get("token"))
	assert.Equal(t, "AMER", creds.Get("company"))
	assert.Equal(t, "AMER", creds.Get("segment"))
	assert.Equal(t, "A000000012345678", creds.Get("cddomain"))
	assert.Equal(t, "ACCT", creds.Get("usergroup"))
	assert.Equal(t, "ACCT", creds.Get("accesslevel"))
	assert.Equal(t, "Y", creds.Get("authorized"))
	assert.Equal(t, "APP", creds.Get("appid"))
	assert.Equal(t, "acl-string", creds.Get("acl"))
	// 2026-07-28T10:30:00Z в миллисекундах от эпохи.
	assert.Equal(t, "1785234600000", creds.Get("timestamp"))
}

func TestStreamCredentialsBadTimestamp(t *testing.T) {
	var principals UserPrincipals
	require.NoError(t, json.Unmarshal([]byte(principalsPayload), &principals))
	principals.StreamerInfo.TokenTimestamp = "вчера"

	_, err := StreamCredentials(principals)
	assert.Error(t, err)
}

func TestTokenTimestampLayouts(t *testing.T) {
	for _, raw := range []string{
		"2026-07-28T10:30:00+0000",
		"2026-07-28T10:30:00Z",
		"2026-07-28T10:30:00+00:00",
		"2026-07-28T10:30:00",
	} {
		ms, err := tokenTimestampMs(raw)
		require.NoError(t, err, raw)
		assert.EqualValues(t, 1785234600000, ms, raw)
	}
}
