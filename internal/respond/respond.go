package respond

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of a truncated 200.
func JSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("failed to encode JSON", "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"Internal Server Error","message":"failed to encode response"}` + "\n")
	}
	write(w, status, "application/json; charset=utf-8", buf.Bytes())
}

// Error writes the JSON error envelope used by every API route.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

func HTML(w http.ResponseWriter, status int, body []byte) {
	write(w, status, "text/html; charset=utf-8", body)
}

func write(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
