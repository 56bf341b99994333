package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamWriter writes a newline-delimited JSON event stream: one object per
// line, terminated by a final result (or error) line.
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	encoder *json.Encoder
}

// streamLine is the envelope for one NDJSON line.
type streamLine struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewStreamWriter creates an NDJSON stream writer
func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &StreamWriter{w: w, flusher: flusher, encoder: json.NewEncoder(w)}, nil
}

// WriteEvent sends one progress line
func (s *StreamWriter) WriteEvent(event string, data any) error {
	if err := s.encoder.Encode(streamLine{Event: event, Data: data}); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends a terminal error line
func (s *StreamWriter) WriteError(message string) {
	_ = s.encoder.Encode(streamLine{Event: "error", Error: message})
	s.flusher.Flush()
}

// WriteResult sends the terminal result line
func (s *StreamWriter) WriteResult(data any) {
	_ = s.encoder.Encode(streamLine{Event: "result", Data: data})
	s.flusher.Flush()
}
