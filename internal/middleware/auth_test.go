package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxsg/chat-api/internal/auth"
)

type stubDenylist struct {
	revoked map[string]bool
	err     error
}

func (d stubDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (d stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	return d.revoked[id], d.err
}

func TestRequireToken(t *testing.T) {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	valid, err := issuer.Issue("alice@example.com")
	require.NoError(t, err)
	claims, err := issuer.Parse(valid)
	require.NoError(t, err)

	twoHoursAgo := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.WithClock(twoHoursAgo).Issue("alice@example.com")
	require.NoError(t, err)
	foreign, err := auth.NewIssuer("other-secret", time.Hour).Issue("alice@example.com")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice@example.com", auth.EmailFrom(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		token    string
		denylist auth.Denylist
		want     int
	}{
		{"valid", valid, nil, http.StatusOK},
		{"missing", "", nil, http.StatusForbidden},
		{"garbage", "not-a-token", nil, http.StatusUnauthorized},
		{"expired", expired, nil, http.StatusUnauthorized},
		{"wrong secret", foreign, nil, http.StatusUnauthorized},
		{"not revoked", valid, stubDenylist{revoked: map[string]bool{}}, http.StatusOK},
		{"revoked", valid, stubDenylist{revoked: map[string]bool{claims.ID: true}}, http.StatusUnauthorized},
		{"denylist down", valid, stubDenylist{err: errors.New("redis: connection refused")}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/chats", nil)
			if tt.token != "" {
				req.Header.Set(auth.TokenHeader, tt.token)
			}
			rr := httptest.NewRecorder()

			RequireToken(issuer, tt.denylist)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
