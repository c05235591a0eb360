/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package webspy is an HTTP server double that records the requests it receives and
answers with queued responses.

Two sub-paths are reserved for the test itself:

 GET  /requested/        all recorded requests as JSON, keyed by path
 GET  /requested/<path>  the requests recorded for /<path>
 POST /responses/        a JSON array of Response to queue

Every other path is recorded and answered with the next queued Response, or an empty 200.
*/
package webspy

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	requestedPrefix = "/requested/"
	responsesPrefix = "/responses/"
)

// RequestInfo is what is recorded for each request. Body is nil for GET requests.
type RequestInfo struct {
	Headers http.Header `json:"headers"`
	Method  string      `json:"method"`
	Body    *string     `json:"body"`
}

// Response is a canned answer. A zero Status means 200.
type Response struct {
	Status  int               `json:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// Server is an http.Handler, typically run with httptest.NewServer
type Server struct {
	mutex     sync.Mutex
	requested map[string][]RequestInfo
	responses []Response
}

var _ http.Handler = (*Server)(nil)

// NewServer returns a Server with nothing recorded and no queued responses
func NewServer() *Server {
	return &Server{requested: make(map[string][]RequestInfo)}
}

// ServeHTTP routes the reserved sub-paths and records everything else
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, requestedPrefix):
		s.handleRequested(w, path)
	case strings.HasPrefix(path, responsesPrefix):
		s.handleResponses(w, r)
	default:
		if err := s.record(path, r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.respond(w)
	}
}

func (s *Server) handleRequested(w http.ResponseWriter, path string) {
	var payload interface{}
	if path == requestedPrefix {
		payload = s.Requested()
	} else {
		requested := path[len(requestedPrefix)-1:]
		infos, found := s.RequestsTo(requested)
		if !found {
			http.Error(w, fmt.Sprintf("%s was never accessed", requested), http.StatusNotFound)
			return
		}
		payload = infos
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(encoded)
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	var responses []Response
	if err := json.NewDecoder(r.Body).Decode(&responses); err != nil {
		http.Error(w, fmt.Sprintf("expected a JSON array of responses: %v", err), http.StatusBadRequest)
		return
	}
	s.Queue(responses...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) record(path string, r *http.Request) error {
	info := RequestInfo{Headers: r.Header.Clone(), Method: r.Method}
	if r.Method != http.MethodGet {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("reading request body: %w", err)
		}
		text := string(body)
		info.Body = &text
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requested[path] = append(s.requested[path], info)
	return nil
}

func (s *Server) respond(w http.ResponseWriter) {
	s.mutex.Lock()
	if len(s.responses) == 0 {
		s.mutex.Unlock()
		return
	}
	response := s.responses[0]
	s.responses = s.responses[1:]
	s.mutex.Unlock()

	for k, v := range response.Headers {
		w.Header().Set(k, v)
	}
	if response.Status != 0 {
		w.WriteHeader(response.Status)
	}
	_, _ = io.WriteString(w, response.Body)
}

// Queue appends responses to be served in order
func (s *Server) Queue(responses ...Response) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.responses = append(s.responses, responses...)
}

// Pending is the number of queued responses not yet served
func (s *Server) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.responses)
}

// Requested returns every recorded request, keyed by path
func (s *Server) Requested() map[string][]RequestInfo {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	all := make(map[string][]RequestInfo, len(s.requested))
	for path, infos := range s.requested {
		all[path] = append([]RequestInfo{}, infos...)
	}
	return all
}

// RequestsTo returns the requests recorded for path
func (s *Server) RequestsTo(path string) ([]RequestInfo, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	infos, found := s.requested[path]
	return append([]RequestInfo{}, infos...), found
}
