// Package backendtest provides an in-process fake of the chat backend for
// tests and local development.
package backendtest

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/andrew/ragchat/pkg/backend"
)

// Reply is a canned answer. Raw, when set, is written verbatim instead of
// encoding Body as JSON.
type Reply struct {
	Status int
	Body   interface{}
	Raw    string
}

// Request is a call recorded by the server
type Request struct {
	Path      string
	RequestID string
	Body      map[string]interface{}
}

// Server is a fake backend that answers /chat and /clear_db with canned replies
type Server struct {
	mu       sync.Mutex
	chat     func(message string) Reply
	clear    Reply
	requests []Request

	srv *httptest.Server
}

// NewServer starts a fake backend. By default /chat echoes the message and
// /clear_db succeeds.
func NewServer() *Server {
	s := &Server{
		chat: func(message string) Reply {
			return Reply{Status: http.StatusOK, Body: backend.ChatResponse{Response: message}}
		},
		clear: Reply{Status: http.StatusOK, Body: backend.ClearResult{
			Status:  backend.ClearSuccess,
			Message: "ChromaDB has been cleared and re-initialized. Please restart the application.",
		}},
	}

	r := chi.NewRouter()
	s.RegisterRoutes(r)
	s.srv = httptest.NewServer(r)
	return s
}

// RegisterRoutes mounts the backend endpoints on r
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post(backend.ChatPath, s.handleChat)
	r.Post(backend.ClearDatabasePath, s.handleClear)
}

// URL returns the base URL of the running server
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down
func (s *Server) Close() {
	s.srv.Close()
}

// OnChat replaces the /chat behaviour
func (s *Server) OnChat(fn func(message string) Reply) {
	s.mu.Lock()
	s.chat = fn
	s.mu.Unlock()
}

// OnClear replaces the /clear_db reply
func (s *Server) OnClear(reply Reply) {
	s.mu.Lock()
	s.clear = reply
	s.mu.Unlock()
}

// Requests returns the calls received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) record(r *http.Request) map[string]interface{} {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = nil
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:      r.URL.Path,
		RequestID: r.Header.Get(backend.RequestIDHeader),
		Body:      body,
	})
	s.mu.Unlock()
	return body
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body := s.record(r)
	message, _ := body["message"].(string)
	if message == "" {
		writeReply(w, Reply{Status: http.StatusBadRequest, Body: backend.ChatResponse{Response: "No message provided."}})
		return
	}

	s.mu.Lock()
	fn := s.chat
	s.mu.Unlock()
	writeReply(w, fn(message))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.mu.Lock()
	reply := s.clear
	s.mu.Unlock()
	writeReply(w, reply)
}

func writeReply(w http.ResponseWriter, reply Reply) {
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	if reply.Raw != "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(reply.Raw))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(reply.Body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
