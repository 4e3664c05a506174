// Package testutils provides a fake chat service for tests.
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// SessionCookie is set by the init endpoint and recorded on chat requests.
const SessionCookie = "session"

// ChatService serves GET init/{identity} and POST chat/{identity} under /responsio/.
// Init and Reply decide the commands returned; both may be replaced before the first request.
type ChatService struct {
	Init  func(identity string) []domain.Command
	Reply func(identity, input string) []domain.Command

	server *httptest.Server

	mu      sync.Mutex
	inputs  []string
	cookies []string
}

// NewChatService starts a service that mounts the window, restores the history
// and answers every message with "You said: <input>". It is closed with the test.
func NewChatService(t *testing.T) *ChatService {
	t.Helper()
	s := &ChatService{
		Init: func(string) []domain.Command {
			return []domain.Command{
				{Command: domain.CommandInit, Data: map[string]any{"title": "Support"}},
				{Command: domain.CommandRestore},
			}
		},
		Reply: func(_, input string) []domain.Command {
			return []domain.Command{{Command: domain.CommandText, Data: "You said: " + input}}
		},
	}

	r := chi.NewRouter()
	r.Route("/responsio", func(r chi.Router) {
		r.Get("/init/{identity}", s.handleInit)
		r.Post("/chat/{identity}", s.handleChat)
	})
	s.server = httptest.NewServer(r)
	t.Cleanup(s.server.Close)
	return s
}

// Root is the asset root of the service.
func (s *ChatService) Root() string {
	return s.server.URL + "/"
}

// Inputs returns the messages received so far.
func (s *ChatService) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

// Cookies returns the session cookie values sent with each chat request.
func (s *ChatService) Cookies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cookies...)
}

func (s *ChatService) handleInit(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: chi.URLParam(r, "identity"), Path: "/"})
	writeCommands(w, s.Init(chi.URLParam(r, "identity")))
}

func (s *ChatService) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "malformed body"})
		return
	}

	s.mu.Lock()
	s.inputs = append(s.inputs, body.Input)
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.cookies = append(s.cookies, c.Value)
	}
	s.mu.Unlock()

	writeCommands(w, s.Reply(chi.URLParam(r, "identity"), body.Input))
}

func writeCommands(w http.ResponseWriter, cmds []domain.Command) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(domain.Envelope{Commands: cmds})
}
