// Package server exposes the plagiarism checker over HTTP and WebSocket.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/pkg/checker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

type Config struct {
	Host string
	Port int
}

type Server struct {
	config  Config
	checker *checker.Checker
}

func NewWithConfig(config Config, c *checker.Checker) *Server {
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 8080
	}

	return &Server{
		config:  config,
		checker: c,
	}
}

// Router builds the full handler tree including CORS and request logging.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/check-plagiarism", s.handleCheck)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return corsMiddleware(loggingMiddleware(mux))
}

func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Plagiarism Detection API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.PDFURL == "" {
		writeError(w, http.StatusBadRequest, "pdf_url is required")
		return
	}

	resp, err := s.checker.Check(r.Context(), req)
	if err != nil {
		log.Printf("check failed: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleWebSocket runs check requests over a persistent connection, sending
// status messages while the analysis runs and the report when it completes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req models.CheckRequest
		if err := json.Unmarshal(message, &req); err != nil {
			s.sendMessage(conn, "error", fmt.Sprintf("invalid request: %v", err))
			continue
		}

		if req.PDFURL == "" {
			s.sendMessage(conn, "error", "pdf_url is required")
			continue
		}

		s.sendMessage(conn, "status", fmt.Sprintf("Analyzing document: %s", req.PDFURL))

		resp, err := s.checker.Check(r.Context(), req)
		if err != nil {
			s.sendMessage(conn, "error", fmt.Sprintf("analysis failed: %v", err))
			continue
		}

		s.sendResult(conn, resp)
	}
}

func (s *Server) sendMessage(conn *websocket.Conn, msgType string, content string) {
	msg := Message{
		Type:    msgType,
		Content: content,
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (s *Server) sendResult(conn *websocket.Conn, resp *models.CheckResponse) {
	msg := Message{
		Type:    "result",
		Content: resp.Message,
		Data:    resp,
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending result: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
