// Package chat is the boundary between the app's views and the finance
// assistant. Every view talks to a Submitter; Client reaches a remote
// assistant over HTTP and Assistant answers locally through an LLM provider.
package chat

import (
	"context"
	"errors"
	"fmt"
)

// Roles used in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyMessage is returned when the message is blank after trimming.
var ErrEmptyMessage = errors.New("chat: message cannot be empty")

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat endpoint's request body.
type Request struct {
	Message     string    `json:"message"`
	ChatHistory []Message `json:"chat_history"`
	UserID      string    `json:"user_id,omitempty"`
}

// Response is the chat endpoint's success body.
type Response struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// ErrorBody is the chat endpoint's error body.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Submitter sends one message with the prior history and returns the reply.
type Submitter interface {
	Submit(ctx context.Context, message string, history []Message) (*Response, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, message string, history []Message) (*Response, error)

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, message string, history []Message) (*Response, error) {
	return f(ctx, message, history)
}

// RemoteError is a non-2xx answer from a remote chat endpoint.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	return e.Detail
}

// String is used in logs where the status matters.
func (e *RemoteError) String() string {
	return fmt.Sprintf("chat: HTTP %d: %s", e.Status, e.Detail)
}
