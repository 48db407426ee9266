package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// writeJSON serializes v with the right content type. Serialization errors
// at this point can only be logged; the status line is already gone.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// bodyParser reads a request body once and answers string lookups whether
// the client sent JSON or form-encoded data.
type bodyParser struct {
	jsonData map[string]any
	formData url.Values
}

func parseBody(r *http.Request) (*bodyParser, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	p := &bodyParser{}
	if len(body) == 0 {
		p.formData = url.Values{}
		return p, nil
	}

	if body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(body, &p.jsonData); err != nil {
			return nil, err
		}
		return p, nil
	}

	p.formData, err = url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the named value as a trimmed string, whatever the original
// JSON type was.
func (p *bodyParser) Get(key string) string {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(stringValue(v))
		}
		return ""
	}
	return strings.TrimSpace(p.formData.Get(key))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
