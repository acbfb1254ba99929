package chats

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// InviteURL replaces the last path segment of requestURL with
// invite/<chatName>. Query and fragment are dropped.
func InviteURL(requestURL, chatName string) (string, error) {
	u, err := url.Parse(requestURL)
	if err != nil {
		return "", fmt.Errorf("invite url: %w", err)
	}
	p := u.EscapedPath()
	prefix := p[:strings.LastIndex(p, "/")+1]
	if prefix == "" {
		prefix = "/"
	}

	out := url.URL{Scheme: u.Scheme, Host: u.Host, User: u.User}
	return out.String() + prefix + "invite/" + url.PathEscape(chatName), nil
}

// RequestURL reconstructs the absolute URL a request was made to.
func RequestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
