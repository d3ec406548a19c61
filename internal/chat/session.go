package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EmptyReply replaces a successful but blank answer.
const EmptyReply = "I apologize, but I couldn't generate a response. Please try again."

// Session is one view's conversation state. It owns the history and a
// loading flag; the flag is always cleared when a send finishes, even on
// failure.
type Session struct {
	ID string

	submitter Submitter

	mu      sync.Mutex
	history []Message
	loading bool
}

// NewSession starts an empty conversation backed by submitter.
func NewSession(submitter Submitter) *Session {
	return &Session{ID: uuid.NewString(), submitter: submitter}
}

// Send submits text and returns the assistant message appended to the
// history. It returns false without doing anything when text is blank or a
// send is already in flight. Submission errors become a visible assistant
// message rather than a returned error.
func (s *Session) Send(ctx context.Context, text string) (Message, bool) {
	s.mu.Lock()
	if strings.TrimSpace(text) == "" || s.loading {
		s.mu.Unlock()
		return Message{}, false
	}
	prior := make([]Message, len(s.history))
	copy(prior, s.history)
	s.history = append(s.history, Message{Role: RoleUser, Content: text})
	s.loading = true
	s.mu.Unlock()

	reply := s.submit(ctx, text, prior)

	s.mu.Lock()
	s.history = append(s.history, reply)
	s.loading = false
	s.mu.Unlock()
	return reply, true
}

func (s *Session) submit(ctx context.Context, text string, prior []Message) (reply Message) {
	reply.Role = RoleAssistant
	defer func() {
		if r := recover(); r != nil {
			reply.Content = errorText(nil)
		}
	}()

	resp, err := s.submitter.Submit(ctx, text, prior)
	switch {
	case err != nil:
		reply.Content = errorText(err)
	case resp == nil || strings.TrimSpace(resp.Response) == "":
		reply.Content = EmptyReply
	default:
		reply.Content = resp.Response
	}
	return reply
}

func errorText(err error) string {
	msg := "Unknown error occurred"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return "⚠️ Error: " + msg
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Loading reports whether a send is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Reset clears the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}
