package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"scoresight/internal/domain"
)

// ChatReply es la respuesta del backend a un turno de chat.
type ChatReply struct {
	Response   string
	Timestamp  string
	Source     *domain.Source
	Confidence *float64
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response   *string         `json:"response"`
	Timestamp  string          `json:"timestamp"`
	Source     *string         `json:"source,omitempty"`
	Confidence json.RawMessage `json:"confidence,omitempty"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SendMessage envia el texto del usuario y devuelve la respuesta del asistente.
func (c *HTTPClient) SendMessage(ctx context.Context, text string) (ChatReply, error) {
	var cr chatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", "", chatRequest{Message: text}, &cr); err != nil {
		return ChatReply{}, err
	}
	if cr.Response == nil || strings.TrimSpace(*cr.Response) == "" {
		return ChatReply{}, fmt.Errorf("%w: empty response text", ErrMalformedResponse)
	}
	confidence, err := parseConfidence(cr.Confidence)
	if err != nil {
		return ChatReply{}, err
	}

	reply := ChatReply{
		Response:   *cr.Response,
		Timestamp:  strings.TrimSpace(cr.Timestamp),
		Confidence: confidence,
	}
	if cr.Source != nil && strings.TrimSpace(*cr.Source) != "" {
		src := domain.Source(strings.TrimSpace(*cr.Source))
		reply.Source = &src
	}
	return reply, nil
}

// parseConfidence acepta un numero; las etiquetas high/medium/low que envia
// el backend se descartan porque la confianza es solo informativa.
func parseConfidence(raw json.RawMessage) (*float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: confidence: %v", ErrMalformedResponse, err)
	}
	return &v, nil
}

// GetSuggestions devuelve los prompts de ejemplo para respuestas rapidas.
func (c *HTTPClient) GetSuggestions(ctx context.Context) ([]string, error) {
	var sr suggestionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/suggestions", "", nil, &sr); err != nil {
		return nil, err
	}
	return sr.Suggestions, nil
}
