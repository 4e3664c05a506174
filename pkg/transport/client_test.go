package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/transport"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newServer(t *testing.T, routes func(r chi.Router)) (*httptest.Server, *transport.Client) {
	t.Helper()
	r := chi.NewRouter()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, transport.New(srv.URL + "/responsio/")
}

func TestClient_Classification(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantOK      bool
		wantPayload any
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "200 JSON",
			handler:     reply(200, "application/json", `{"ok":true}`),
			wantOK:      true,
			wantPayload: map[string]any{"ok": true},
		},
		{
			name:        "500 with error field",
			handler:     reply(500, "application/json", `{"error":"boom"}`),
			wantStatus:  500,
			wantMessage: "boom",
		},
		{
			name:        "200 with unparsable body",
			handler:     reply(200, "application/json", `{not json`),
			wantStatus:  500,
			wantMessage: "Internal Error",
		},
		{
			name:        "404 without error field",
			handler:     reply(404, "application/json", `{"detail":"nope"}`),
			wantStatus:  404,
			wantMessage: "Internal Server Error",
		},
		{
			name:        "502 with unparsable body",
			handler:     reply(502, "application/json", `<html>bad gateway</html>`),
			wantStatus:  502,
			wantMessage: "Internal Server Error",
		},
		{
			name:    "204 empty",
			handler: reply(204, "", ""),
			wantOK:  true,
		},
		{
			name:        "missing content type defaults to JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header()["Content-Type"] = nil // suppress sniffing
				_, _ = io.WriteString(w, `{"commands":[]}`)
			},
			wantOK:      true,
			wantPayload: map[string]any{"commands": []any{}},
		},
		{
			name:        "JSON with charset",
			handler:     reply(200, "application/json; charset=utf-8", `[1,2]`),
			wantOK:      true,
			wantPayload: []any{float64(1), float64(2)},
		},
		{
			name:        "unsupported content type passes text through",
			handler:     reply(200, "text/plain", `hello`),
			wantOK:      true,
			wantPayload: "hello",
		},
		{
			name:        "201 is a failure",
			handler:     reply(201, "application/json", `{}`),
			wantStatus:  201,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newServer(t, func(r chi.Router) {
				r.Get("/responsio/probe", tt.handler)
			})

			res := client.Get(context.Background(), "probe", nil, domain.RequestOptions{})

			if tt.wantOK {
				require.True(t, res.OK(), "expected success, got %v", res.Failure)
				assert.Equal(t, tt.wantPayload, res.Payload)
				return
			}
			require.False(t, res.OK())
			assert.Equal(t, tt.wantStatus, res.Failure.Status)
			assert.Equal(t, tt.wantMessage, res.Failure.Message)
		})
	}
}

func TestClient_PostHeadersAndBody(t *testing.T) {
	var gotType, gotEncoding, gotAccept string
	var gotBody map[string]any

	_, client := newServer(t, func(r chi.Router) {
		r.Post("/responsio/chat/{identity}", func(w http.ResponseWriter, r *http.Request) {
			gotType = r.Header.Get("Content-Type")
			gotEncoding = r.Header.Get("Content-Transfer-Encoding")
			gotAccept = r.Header.Get("Accept")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"identity": chi.URLParam(r, "identity")})
		})
	})

	res := client.Post(context.Background(), "chat/abc", map[string]any{"input": "Hello"}, domain.RequestOptions{})
	require.True(t, res.OK())
	assert.Equal(t, map[string]any{"identity": "abc"}, res.Payload)
	assert.Equal(t, "application/json;charset=UTF-8", gotType)
	assert.Equal(t, "application/json", gotAccept)
	assert.Empty(t, gotEncoding)
	assert.Equal(t, map[string]any{"input": "Hello"}, gotBody)

	res = client.Post(context.Background(), "chat/abc", "x", domain.RequestOptions{Type: "text/plain", Encoding: "base64"})
	require.True(t, res.OK())
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "base64", gotEncoding)
}

func TestClient_GetQueryAndAccept(t *testing.T) {
	var gotQuery url.Values
	var gotAccept string

	_, client := newServer(t, func(r chi.Router) {
		r.Get("/responsio/init/{identity}", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			gotAccept = r.Header.Get("Accept")
			w.WriteHeader(http.StatusNoContent)
		})
	})

	res := client.Get(context.Background(), "init/abc", url.Values{"lang": {"en"}}, domain.RequestOptions{Accept: "application/vnd.custom+json"})
	require.True(t, res.OK())
	assert.Equal(t, "en", gotQuery.Get("lang"))
	assert.Equal(t, "application/vnd.custom+json", gotAccept)
}

func TestClient_GetRepeatedParams(t *testing.T) {
	var gotQuery url.Values
	_, client := newServer(t, func(r chi.Router) {
		r.Get("/responsio/search", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			w.WriteHeader(http.StatusNoContent)
		})
	})

	res := client.Get(context.Background(), "search?page=1", url.Values{"tag": {"a", "b"}}, domain.RequestOptions{})
	require.True(t, res.OK())
	assert.Equal(t, []string{"a", "b"}, gotQuery["tag"])
	assert.Equal(t, "1", gotQuery.Get("page"), "the endpoint's own query is kept")
}

func TestClient_AbsoluteEndpoint(t *testing.T) {
	other := httptest.NewServer(reply(200, "application/json", `{"from":"other"}`))
	defer other.Close()

	_, client := newServer(t, func(r chi.Router) {})

	res := client.Get(context.Background(), other.URL+"/anything", nil, domain.RequestOptions{})
	require.True(t, res.OK())
	assert.Equal(t, map[string]any{"from": "other"}, res.Payload)

	u, err := client.Resolve("chat/abc")
	require.NoError(t, err)
	assert.Equal(t, client.Service()+"chat/abc", u.String())
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(reply(200, "application/json", `{}`))
	base := srv.URL
	srv.Close()

	client := transport.New(base + "/responsio/")
	res := client.Get(context.Background(), "init/abc", nil, domain.RequestOptions{})

	require.False(t, res.OK())
	assert.Equal(t, 500, res.Failure.Status)
	assert.Equal(t, "Internal Error", res.Failure.Message)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := transport.New(srv.URL+"/", transport.WithTimeout(50*time.Millisecond))
	res := client.Get(context.Background(), "slow", nil, domain.RequestOptions{})

	require.False(t, res.OK())
	assert.Equal(t, 500, res.Failure.Status)
	assert.Equal(t, "Request Timeout", res.Failure.Message)
}

func TestClient_TimeoutAppliesToGivenClient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	hc := &http.Client{}
	client := transport.New(srv.URL+"/",
		transport.WithTimeout(50*time.Millisecond),
		transport.WithHTTPClient(hc),
	)
	res := client.Get(context.Background(), "slow", nil, domain.RequestOptions{})

	require.False(t, res.OK())
	assert.Equal(t, "Request Timeout", res.Failure.Message)

	// The caller's client is left untouched.
	assert.Zero(t, hc.Timeout)
	assert.Nil(t, hc.Jar)
}

func TestClient_AmbientCookies(t *testing.T) {
	var seen string
	_, client := newServer(t, func(r chi.Router) {
		r.Get("/responsio/init/{identity}", func(w http.ResponseWriter, r *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "s1", Path: "/"})
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"commands":[]}`)
		})
		r.Post("/responsio/chat/{identity}", func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie("JSESSIONID"); err == nil {
				seen = c.Value
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"commands":[]}`)
		})
	})

	require.True(t, client.Get(context.Background(), "init/abc", nil, domain.RequestOptions{}).OK())
	require.True(t, client.Post(context.Background(), "chat/abc", map[string]any{"input": "hi"}, domain.RequestOptions{}).OK())
	assert.Equal(t, "s1", seen)
}
