package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxsg/chat-api/internal/apperr"
	"github.com/nxsg/chat-api/internal/auth"
	"github.com/nxsg/chat-api/internal/chats"
	"github.com/nxsg/chat-api/internal/messages"
	"github.com/nxsg/chat-api/internal/metrics"
	"github.com/nxsg/chat-api/internal/models"
	"github.com/nxsg/chat-api/internal/store"
	"github.com/nxsg/chat-api/internal/users"
)

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	issuer := auth.NewIssuer("test-secret", auth.SessionTTL)
	deny := auth.NewMemoryDenylist()

	h := NewRouter(Deps{
		Users:    users.NewService(st, issuer, auth.Hasher{Cost: 4}, deny),
		Chats:    chats.NewService(st),
		Messages: messages.NewService(st),
		Tokens:   issuer,
		Denylist: deny,
		Metrics:  metrics.New(),
		Logger:   zerolog.Nop(),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(method, path, token string, body interface{}, headers ...string) (int, []byte) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, out
}

func (s *testServer) signup(name, email, pw string) {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/users/newUser", "", models.RegisterRequest{Name: name, Email: email, Password: pw})
	require.Equal(s.t, http.StatusOK, code, string(body))
}

func (s *testServer) login(email, pw string) string {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/users/login", "", models.LoginRequest{Email: email, Password: pw})
	require.Equal(s.t, http.StatusOK, code, string(body))
	var resp models.LoginResponse
	require.NoError(s.t, json.Unmarshal(body, &resp))
	require.Equal(s.t, email, resp.Email)
	return resp.Token
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var e map[string]string
	require.NoError(t, json.Unmarshal(body, &e))
	return e["error"]
}

func TestEndToEnd_AliceAndBob(t *testing.T) {
	s := newTestServer(t)

	s.signup("Alice", "alice@example.com", "pw1")
	s.signup("Bob", "bob@example.com", "pw2")
	alice := s.login("alice@example.com", "pw1")

	code, body := s.do(http.MethodPost, "/api/chats/newChat", alice, models.CreateChatRequest{ChatName: "team"})
	require.Equal(t, http.StatusOK, code, string(body))
	var created map[string]string
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, s.srv.URL+"/api/chats/invite/team", created["invite"])

	code, body = s.do(http.MethodPost, "/api/chats/invite/team", alice, models.AddUserRequest{UserName: "bob@example.com"})
	require.Equal(t, http.StatusOK, code, string(body))
	var chat models.Chat
	require.NoError(t, json.Unmarshal(body, &chat))
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, chat.Users)

	bob := s.login("bob@example.com", "pw2")
	code, body = s.do(http.MethodPost, "/api/chats/messages/team", bob, models.PostMessageRequest{Message: "hi alice"})
	require.Equal(t, http.StatusOK, code, string(body))

	code, body = s.do(http.MethodGet, "/api/chats/messages/team", alice, nil, "email", "alice@example.com")
	require.Equal(t, http.StatusOK, code, string(body))
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(body, &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "bob@example.com", msgs[0].Creator)
	assert.Equal(t, "hi alice", msgs[0].Message)
	assert.False(t, msgs[0].Date.IsZero())
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodGet, "/api/chats", "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "a token is required for authentication", errorOf(t, body))

	code, _ = s.do(http.MethodGet, "/api/chats", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "chat_api_http_requests_total")
}

func TestUsersEndpoints(t *testing.T) {
	s := newTestServer(t)

	s.signup("Alice", "alice@example.com", "pw1")
	code, body := s.do(http.MethodPost, "/api/users/newUser", "", models.RegisterRequest{Name: "A", Email: "alice@example.com", Password: "x"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "user already exists", errorOf(t, body))

	code, body = s.do(http.MethodPost, "/api/users/login", "", models.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "login failed", errorOf(t, body))

	code, body = s.do(http.MethodPost, "/api/users/login", "", models.LoginRequest{Email: "ghost@example.com", Password: "pw1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "login failed", errorOf(t, body))

	tok := s.login("alice@example.com", "pw1")

	code, body = s.do(http.MethodGet, "/api/users/alice@example.com", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var u map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Equal(t, "alice@example.com", u["email"])
	assert.NotContains(t, u, "password")
	assert.NotContains(t, u, "token")

	code, _ = s.do(http.MethodGet, "/api/users/ghost@example.com", tok, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/api/users", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	s.signup("Alice", "alice@example.com", "pw1")
	tok := s.login("alice@example.com", "pw1")

	code, _ := s.do(http.MethodPost, "/api/users/logout", tok, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/users", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	fresh := s.login("alice@example.com", "pw1")
	code, _ = s.do(http.MethodGet, "/api/users", fresh, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestChatsEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.signup("Alice", "alice@example.com", "pw1")
	s.signup("Bob", "bob@example.com", "pw2")
	alice := s.login("alice@example.com", "pw1")
	bob := s.login("bob@example.com", "pw2")

	code, _ := s.do(http.MethodGet, "/api/chats", alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/chats/newChat", alice, models.CreateChatRequest{ChatName: "bts"})
	require.Equal(t, http.StatusOK, code)

	code, body := s.do(http.MethodPost, "/api/chats/newChat", bob, models.CreateChatRequest{ChatName: "bts"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "chat already exists", errorOf(t, body))

	code, _ = s.do(http.MethodPost, "/api/chats/newChat", bob, models.CreateChatRequest{ChatName: "other", Owner: "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(http.MethodGet, "/api/chats/bts", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var chat models.Chat
	require.NoError(t, json.Unmarshal(body, &chat))
	assert.Equal(t, "alice@example.com", chat.Owner)

	code, _ = s.do(http.MethodGet, "/api/chats/nope", bob, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// Invite link is owner-only, even for members.
	code, body = s.do(http.MethodGet, "/api/chats/invite/bts", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var link map[string]string
	require.NoError(t, json.Unmarshal(body, &link))
	assert.Equal(t, s.srv.URL+"/api/chats/invite/bts", link["invite"])

	code, _ = s.do(http.MethodPost, "/api/chats/invite/bts", alice, models.AddUserRequest{UserName: "bob@example.com"})
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(http.MethodGet, "/api/chats/invite/bts", bob, nil)
	assert.Equal(t, apperr.StatusSentinel, code)
	assert.Equal(t, "not authorized or couldn't find the chat", errorOf(t, body))

	code, _ = s.do(http.MethodGet, "/api/chats/invite/missing", alice, nil)
	assert.Equal(t, apperr.StatusSentinel, code)

	code, body = s.do(http.MethodPost, "/api/chats/invite/bts", alice, models.AddUserRequest{UserName: "bob@example.com"})
	assert.Equal(t, apperr.StatusSentinel, code)
	assert.Equal(t, "user already added to chat", errorOf(t, body))
}

func TestMessagesEndpoints_NonDisclosure(t *testing.T) {
	s := newTestServer(t)
	s.signup("Alice", "alice@example.com", "pw1")
	s.signup("Eve", "eve@example.com", "pw3")
	alice := s.login("alice@example.com", "pw1")
	eve := s.login("eve@example.com", "pw3")

	code, _ := s.do(http.MethodPost, "/api/chats/newChat", alice, models.CreateChatRequest{ChatName: "team"})
	require.Equal(t, http.StatusOK, code)

	codeMember, bodyMember := s.do(http.MethodGet, "/api/chats/messages/team", eve, nil)
	codeMissing, bodyMissing := s.do(http.MethodGet, "/api/chats/messages/nope", eve, nil)
	assert.Equal(t, http.StatusNotFound, codeMember)
	assert.Equal(t, codeMissing, codeMember)
	assert.Equal(t, bodyMissing, bodyMember)

	// A spoofed email header does not grant membership.
	code, _ = s.do(http.MethodGet, "/api/chats/messages/team", eve, nil, "email", "alice@example.com")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/chats/messages/team", eve, models.PostMessageRequest{Message: "let me in"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPost, "/api/chats/messages/team", eve, models.PostMessageRequest{Message: "spoof", Creator: "alice@example.com"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body := s.do(http.MethodGet, "/api/chats/messages/team", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))
}

func TestInviteLeadsBackToChat_EscapedNames(t *testing.T) {
	s := newTestServer(t)
	s.signup("Alice", "alice@example.com", "pw1")
	s.signup("Bob", "bob@example.com", "pw2")
	alice := s.login("alice@example.com", "pw1")
	bob := s.login("bob@example.com", "pw2")

	for _, name := range []string{"a/b", "my team", "q&a!"} {
		t.Run(name, func(t *testing.T) {
			code, body := s.do(http.MethodPost, "/api/chats/newChat", alice, models.CreateChatRequest{ChatName: name})
			require.Equal(t, http.StatusOK, code, string(body))
			var created map[string]string
			require.NoError(t, json.Unmarshal(body, &created))
			invitePath := strings.TrimPrefix(created["invite"], s.srv.URL)
			require.True(t, strings.HasPrefix(invitePath, "/api/chats/invite/"), created["invite"])
			escaped := strings.TrimPrefix(invitePath, "/api/chats/invite/")

			code, body = s.do(http.MethodGet, invitePath, alice, nil)
			require.Equal(t, http.StatusOK, code, string(body))
			var link map[string]string
			require.NoError(t, json.Unmarshal(body, &link))
			assert.Equal(t, created["invite"], link["invite"])

			code, body = s.do(http.MethodPost, invitePath, alice, models.AddUserRequest{UserName: "bob@example.com"})
			require.Equal(t, http.StatusOK, code, string(body))

			code, body = s.do(http.MethodPost, "/api/chats/messages/"+escaped, bob, models.PostMessageRequest{Message: "hi"})
			require.Equal(t, http.StatusOK, code, string(body))

			code, body = s.do(http.MethodGet, "/api/chats/"+escaped, bob, nil)
			require.Equal(t, http.StatusOK, code, string(body))
			var chat models.Chat
			require.NoError(t, json.Unmarshal(body, &chat))
			assert.Equal(t, name, chat.ChatName)
			require.Len(t, chat.Messages, 1)
			assert.Equal(t, "bob@example.com", chat.Messages[0].Creator)
		})
	}
}

func TestGetUser_EscapedEmail(t *testing.T) {
	s := newTestServer(t)
	s.signup("Alice", "alice+chat@example.com", "pw1")
	alice := s.login("alice+chat@example.com", "pw1")

	code, body := s.do(http.MethodGet, "/api/users/alice%2Bchat@example.com", alice, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var u models.User
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Equal(t, "alice+chat@example.com", u.Email)
}
