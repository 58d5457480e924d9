package llm

import (
	"strings"
	"time"

	"xenarc-chat-demo/backend/internal/models"
)

// SimulatedClient produces canned replies locally. It stands in for the
// real backend during development and when no API key is configured.
type SimulatedClient struct {
	// Latency is slept before answering, to mimic a network round trip.
	Latency time.Duration
}

// NewSimulatedClient creates a simulated client with the given
// artificial latency.
func NewSimulatedClient(latency time.Duration) *SimulatedClient {
	return &SimulatedClient{Latency: latency}
}

// GenerateResponse answers from a small keyword table. It never fails.
func (c *SimulatedClient) GenerateResponse(message string, _ []models.Turn, _ *Options) (*Response, error) {
	if c.Latency > 0 {
		time.Sleep(c.Latency)
	}

	return &Response{Content: simulateResponse(message)}, nil
}

func simulateResponse(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "hello"), strings.Contains(lower, "hi"):
		return "Hello! I'm XENARC. How can I assist you today?"
	case strings.Contains(lower, "help"):
		return "I'm here to help you! What specific information or assistance do you need?"
	case strings.Contains(lower, "weather"):
		return "I don't have access to real-time weather data, but I can help you find reliable weather services if you'd like."
	case strings.Contains(lower, "name"):
		return "I'm XENARC, a secure AI assistant designed to provide helpful, harmless, and honest responses."
	}

	return "That's an interesting question. As XENARC, I'm designed to provide secure and helpful responses. My knowledge base is continually expanding to better serve users like you."
}
