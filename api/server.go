// Package api provides HTTP API capabilities for the extraction engine.
// This is a capability module that can be enabled via the CLI or used programmatically.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/common"
	"github.com/fbruell/wpx/extractor/model"
)

// Config holds the API server configuration
type Config struct {
	Port      string
	LogPrefix string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:      ":8080",
		LogPrefix: "API: ",
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	client *extractor.Client
	mux    *http.ServeMux
}

// New creates a new API server with the given configuration. The client
// carries the registered bank rule sets and is shared by all requests.
func New(cfg Config, client *extractor.Client) *Server {
	s := &Server{
		config: cfg,
		client: client,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up the API endpoints
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ExtractResponse is the JSON body returned by /extract.
type ExtractResponse struct {
	Filename      string        `json:"filename"`
	Transactions  []*model.Item `json:"transactions"`
	NonImportable []*model.Item `json:"non_importable,omitempty"`
}

// handleExtract handles document extraction requests. The uploaded file
// may be a bank PDF or an already-converted text file.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sReceived request from %s", s.config.LogPrefix, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form with 32MB max memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("%sError parsing multipart form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		log.Printf("%sError getting file from form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	// Read file into memory
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		log.Printf("%sError reading file bytes: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not read file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	lines, err := s.linesFromUpload(fileBytes, handler.Filename)
	if err != nil {
		log.Printf("%sError extracting text: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not extract text from file: "+err.Error(), http.StatusBadRequest)
		return
	}

	if s.textOnlyRequested(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"filename": handler.Filename,
			"text":     strings.Join(lines, "\n"),
		})
		return
	}

	doc := extractor.NewDocument(handler.Filename, "", lines)
	items := s.client.ExtractAll([]*extractor.Document{doc})

	resp := ExtractResponse{Filename: handler.Filename, Transactions: []*model.Item{}}
	for _, item := range items {
		if item.Importable() {
			resp.Transactions = append(resp.Transactions, item)
		} else {
			resp.NonImportable = append(resp.NonImportable, item)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// linesFromUpload converts an uploaded file into text rows. Text uploads
// pass through as-is; anything else is treated as a PDF.
func (s *Server) linesFromUpload(data []byte, filename string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		text := strings.ReplaceAll(string(data), "\r\n", "\n")
		return strings.Split(text, "\n"), nil
	}
	return common.ExtractRowsFromPDFReader(bytes.NewReader(data))
}

func (s *Server) textOnlyRequested(r *http.Request) bool {
	return r.FormValue("text_only") == "true" || r.URL.Query().Get("text_only") == "true"
}
