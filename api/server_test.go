package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fbruell/wpx/extractor"
	"github.com/fbruell/wpx/extractor/model"
	"github.com/fbruell/wpx/extractor/rules/musterbank"
)

func testClient() *extractor.Client {
	client := extractor.NewClient(nil)
	client.Register(musterbank.New(client.Securities()))
	return client
}

func TestNew(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestExtractEndpoint_MethodNotAllowed(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	req := httptest.NewRequest(http.MethodGet, "/extract", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestExtractEndpoint_NoFile(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func uploadRequest(t *testing.T, filename, content string, query string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/extract"+query, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

const buyDocument = `Musterbank AG
Wertpapier Abrechnung Kauf
Stück 10 ACME CORP INHABER-AKTIEN O.N. DE0001234567 (123456)
Ausführungskurs 50,00 EUR
Handelstag 15.01.2015
Ausmachender Betrag 509,90- EUR`

func TestExtractEndpoint_TextUpload(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, uploadRequest(t, "kauf.txt", buyDocument, ""))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp ExtractResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(resp.Transactions))
	}

	tx := resp.Transactions[0].Transaction
	if tx.Type != model.Buy {
		t.Errorf("Expected BUY, got %s", tx.Type)
	}
	if tx.Amount.Amount() != 50990 {
		t.Errorf("Expected 50990, got %d", tx.Amount.Amount())
	}
}

func TestExtractEndpoint_TextOnly(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, uploadRequest(t, "kauf.txt", buyDocument, "?text_only=true"))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["filename"] != "kauf.txt" {
		t.Errorf("Expected filename 'kauf.txt', got '%s'", resp["filename"])
	}
	if !strings.Contains(resp["text"], "Wertpapier Abrechnung Kauf") {
		t.Error("Expected extracted text to contain the document content")
	}
}

func TestExtractEndpoint_InvalidPDF(t *testing.T) {
	server := New(DefaultConfig(), testClient())

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, uploadRequest(t, "broken.pdf", "not a valid pdf", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandler(t *testing.T) {
	server := New(DefaultConfig(), testClient())
	handler := server.Handler()

	if handler == nil {
		t.Fatal("Expected handler to be returned")
	}

	// Verify it's the same mux
	if handler != server.mux {
		t.Error("Expected handler to be the server's mux")
	}
}
