package application

import (
	"context"
	"errors"
	"strings"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/google/uuid"
)

type EventKind string

const (
	EventCommand EventKind = "command"
	EventText    EventKind = "text"
	EventFile    EventKind = "file"
)

const (
	CommandStart  = "start"
	CommandHelp   = "help"
	CommandReset  = "reset"
	CommandCheck  = "check"
	CommandLogin  = "login"
	CommandLogout = "logout"
	Command2FA    = "2fa"
	CommandScrape = "scrape"
	CommandWhy    = "why"
	CommandFind   = "find"
)

var errNoPayload = errors.New("event carries no list payload")

// Attachment is an inbound file. Its body is fetched on first Read so the
// transport's receive loop never waits on a download.
type Attachment struct {
	Name  string
	fetch func(ctx context.Context) ([]byte, error)
}

func (a *Attachment) Read(ctx context.Context) ([]byte, error) {
	if a == nil || a.fetch == nil {
		return nil, errNoPayload
	}
	return a.fetch(ctx)
}

// Event is one inbound interaction from a conversation.
type Event struct {
	ID           string
	Conversation domain.ConversationID
	MessageID    domain.MessageID
	Kind         EventKind
	Command      string
	Args         string
	Text         string
	File         *Attachment
}

// NewTextEvent classifies text as a command when it starts with a slash.
func NewTextEvent(conversation domain.ConversationID, message domain.MessageID, text string) Event {
	event := Event{
		ID:           uuid.NewString(),
		Conversation: conversation,
		MessageID:    message,
		Kind:         EventText,
		Text:         text,
	}

	if command, args, ok := ParseCommand(text); ok {
		event.Kind = EventCommand
		event.Command = command
		event.Args = args
	}

	return event
}

// NewFileEvent wraps a file whose body fetch loads when the event is handled.
func NewFileEvent(conversation domain.ConversationID, message domain.MessageID, name string, fetch func(ctx context.Context) ([]byte, error)) Event {
	return Event{
		ID:           uuid.NewString(),
		Conversation: conversation,
		MessageID:    message,
		Kind:         EventFile,
		File:         &Attachment{Name: name, fetch: fetch},
	}
}

// ParseCommand splits "/name@bot args" into a lowercase name and trimmed args.
func ParseCommand(text string) (string, string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") || len(trimmed) < 2 {
		return "", "", false
	}

	head, args, _ := strings.Cut(trimmed[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}

	return strings.ToLower(head), strings.TrimSpace(args), true
}

// Payload returns the text or file body carried by a list submission.
func (e Event) Payload(ctx context.Context) (string, error) {
	switch e.Kind {
	case EventText:
		return e.Text, nil
	case EventFile:
		data, err := e.File.Read(ctx)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", errNoPayload
	}
}
