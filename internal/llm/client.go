// Package llm abstracts the backend that produces assistant replies.
// The orchestrator depends only on the Client interface, so the HTTP
// backend and the local simulation are interchangeable.
package llm

import (
	"errors"

	"xenarc-chat-demo/backend/internal/models"
)

// ErrNotConfigured is returned when the backend has no credentials.
// The orchestrator turns it into an in-thread error message; it never
// reaches the UI as an exception.
var ErrNotConfigured = errors.New("API key not configured. Please contact the administrator.")

// DefaultSystemPrompt frames the assistant when no override is given.
const DefaultSystemPrompt = "You are XENARC, a helpful AI assistant."

// ReasoningSystemPrompt is the override used when the caller asks the
// assistant to show its work.
const ReasoningSystemPrompt = "You are XENARC, a helpful AI assistant. Please show your reasoning step by step before providing your final answer."

// Options enumerates every recognized generation knob. Zero values fall
// back to the defaults below.
type Options struct {
	MaxTokens    int
	Temperature  float64
	TopP         float64
	Stream       bool
	SystemPrompt string
}

// Generation parameter defaults.
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
)

// withDefaults fills in unset options.
func (o *Options) withDefaults() Options {
	opts := Options{}
	if o != nil {
		opts = *o
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = DefaultTopP
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return opts
}

// Response carries the generated assistant text.
type Response struct {
	Content string
}

// Client generates an assistant reply for a user message given the
// prior conversation turns. History must be the prior session messages
// filtered to user/assistant roles, in original order. Implementations
// return either a response or an error, never both.
type Client interface {
	GenerateResponse(message string, history []models.Turn, opts *Options) (*Response, error)
}
