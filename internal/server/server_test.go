package server

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"

	"serptrack/internal/config"
)

// TestErrorHandlerReturnsJSON verifies that errors surface as the JSON
// envelope the API clients expect, not an HTML error page.
func TestErrorHandlerReturnsJSON(t *testing.T) {
	srv := New(&config.Config{ServerAddr: ":0"})

	srv.App.Get("/boom", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})

	req, _ := http.NewRequest("GET", "/boom", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTeapot {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusTeapot)
	}

	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("response is not JSON: %s", body)
	}
	if envelope.Status != "error" || envelope.Error != "short and stout" {
		t.Errorf("envelope = %+v", envelope)
	}
}

// TestCORSHeaders verifies that configured origins are echoed back.
func TestCORSHeaders(t *testing.T) {
	srv := New(&config.Config{ServerAddr: ":0", CORSOrigins: "https://app.example.com"})

	srv.App.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
