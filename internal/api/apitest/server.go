// Package apitest provides a fake publish API server for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/localrivet/wilduri"
)

const (
	jsonRoute   = "/v2/publish/{operation}"
	legacyRoute = "/legacy/{method}"
)

// Call records one request received by the Server
type Call struct {
	// Operation is "publish/<op>" for JSON calls or the legacy method name
	Operation string

	// JSON is the decoded body of a JSON call
	JSON map[string]interface{}

	// Form holds the values of a legacy multipart call
	Form map[string]string

	Header http.Header
}

// Handler produces the status code and JSON body for a call
type Handler func(call Call) (int, interface{})

// Server is an httptest server that routes publish operations to handlers
// and records every call in arrival order.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]Handler
}

// NewServer starts a fake publish API. Close it when done.
func NewServer() *Server {
	s := &Server{handlers: make(map[string]Handler)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// JSONURL is the base URL to configure as the JSON API root
func (s *Server) JSONURL() string { return s.URL + "/v2" }

// LegacyURL is the base URL to configure as the legacy API root
func (s *Server) LegacyURL() string { return s.URL + "/legacy" }

// Handle registers h for operation
func (s *Server) Handle(operation string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[operation] = h
}

// Respond registers a handler that answers operation with queryResult
func (s *Server) Respond(operation string, queryResult interface{}) {
	s.Handle(operation, func(Call) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{"queryResult": queryResult}
	})
}

// Fail registers a handler that answers operation with an error envelope
func (s *Server) Fail(operation string, status int, code, message string) {
	s.Handle(operation, func(Call) (int, interface{}) {
		return status, map[string]interface{}{
			"errors": []map[string]string{{"code": code, "message": message}},
		}
	})
}

// Calls returns a copy of the recorded calls
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Operations returns the operation names of the recorded calls
func (s *Server) Operations() []string {
	calls := s.Calls()
	ops := make([]string, 0, len(calls))
	for _, c := range calls {
		ops = append(ops, c.Operation)
	}
	return ops
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	call := Call{Header: r.Header.Clone()}
	if op, ok := match(jsonRoute, "operation", r.URL.Path); ok {
		call.Operation = "publish/" + op
		if err := json.NewDecoder(r.Body).Decode(&call.JSON); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else if method, ok := match(legacyRoute, "method", r.URL.Path); ok {
		call.Operation = method
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		call.Form = make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				call.Form[k] = v[0]
			}
		}
	} else {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	h := s.handlers[call.Operation]
	s.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"code": "NOT_FOUND", "message": "no handler for " + call.Operation}},
		})
		return
	}

	status, body := h(call)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func match(pattern, param, path string) (string, bool) {
	tmpl, err := wilduri.New(pattern)
	if err != nil {
		return "", false
	}
	params, matched := tmpl.Match(path)
	if !matched {
		return "", false
	}
	for k, v := range params {
		if fmt.Sprint(k) == param {
			return fmt.Sprint(v), true
		}
	}
	return "", false
}
