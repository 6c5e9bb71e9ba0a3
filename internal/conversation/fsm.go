// Package conversation drives the interactive upload-then-choose dialogue
// as an explicit state machine keyed by session id.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/paperstack-cli/internal/stack"
)

// State is a dialogue position.
type State string

const (
	AwaitingUpload     State = "awaiting_upload"
	AwaitingTechnology State = "awaiting_technology"
	Done               State = "done"
)

// UploadPrompt asks for a paper.
const UploadPrompt = "Please upload your research paper in the form of PDF."

// Session is the persisted dialogue state.
type Session struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Paper      string    `json:"paper,omitempty"`
	Technology stack.ID  `json:"technology,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession starts a dialogue awaiting an upload.
func NewSession() Session {
	return Session{ID: uuid.NewString(), State: AwaitingUpload}
}

// EventKind classifies one line of user input.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventGreeting
	EventUpload
	EventTechnology
)

func (k EventKind) String() string {
	switch k {
	case EventGreeting:
		return "greeting"
	case EventUpload:
		return "upload"
	case EventTechnology:
		return "technology"
	default:
		return "unknown"
	}
}

// Event is classified input.
type Event struct {
	Kind       EventKind
	Path       string
	Technology stack.ID
}

var greetingRe = regexp.MustCompile(`(?i)\b(?:hi|hello|hey|greetings)\b`)

// Classifier maps raw input to events. Exists reports whether a named paper
// is present; nil treats every path as present.
type Classifier struct {
	Exists func(path string) bool
}

// Classify interprets input. Uploads ("upload <path>" or a bare path to a
// .pdf that exists) are checked first, then greetings, then technology
// choices.
func (c Classifier) Classify(input string) Event {
	line := strings.TrimSpace(input)
	if line == "" {
		return Event{Kind: EventUnknown}
	}
	if path, ok := uploadPath(line); ok && c.exists(path) {
		return Event{Kind: EventUpload, Path: path}
	}
	if greetingRe.MatchString(line) {
		return Event{Kind: EventGreeting}
	}
	if id, ok := stack.Choose(line); ok {
		return Event{Kind: EventTechnology, Technology: id}
	}
	return Event{Kind: EventUnknown}
}

func (c Classifier) exists(path string) bool {
	if c.Exists == nil {
		return true
	}
	return c.Exists(path)
}

func uploadPath(line string) (string, bool) {
	if rest, ok := cutPrefixFold(line, "upload "); ok {
		p := strings.Trim(strings.TrimSpace(rest), `"'`)
		return p, p != ""
	}
	p := strings.Trim(line, `"'`)
	if strings.EqualFold(filepath.Ext(p), ".pdf") {
		return p, true
	}
	return "", false
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

// ActionKind tells the front end what to do after a transition.
type ActionKind int

const (
	ActionPromptUpload ActionKind = iota
	ActionShowMenu
	ActionGenerate
)

// Action is the result of one transition.
type Action struct {
	Kind    ActionKind
	Message string
}

// Transition applies e to s. It is pure; persistence is the Machine's job.
//
// From Done a new technology choice regenerates the same paper.
func Transition(s Session, e Event) (Session, Action) {
	switch e.Kind {
	case EventGreeting:
		s.State, s.Paper, s.Technology = AwaitingUpload, "", ""
		return s, Action{Kind: ActionPromptUpload, Message: UploadPrompt}
	case EventUpload:
		s.State, s.Paper, s.Technology = AwaitingTechnology, e.Path, ""
		return s, Action{Kind: ActionShowMenu, Message: stack.Menu()}
	case EventTechnology:
		if s.Paper != "" && (s.State == AwaitingTechnology || s.State == Done) {
			s.State, s.Technology = Done, e.Technology
			return s, Action{Kind: ActionGenerate}
		}
	}
	switch s.State {
	case AwaitingTechnology:
		return s, Action{Kind: ActionShowMenu, Message: stack.Menu()}
	case Done:
		return s, Action{Kind: ActionPromptUpload,
			Message: UploadPrompt + " Or choose another technology stack for the current paper."}
	default:
		return s, Action{Kind: ActionPromptUpload, Message: UploadPrompt}
	}
}

// Machine runs transitions against a Store.
type Machine struct {
	store    Store
	classify Classifier
	now      func() time.Time
}

// NewMachine builds a Machine.
func NewMachine(store Store, classify Classifier) *Machine {
	return &Machine{store: store, classify: classify, now: time.Now}
}

// Handle loads the session (creating it when unknown), applies input and
// saves the result.
func (m *Machine) Handle(ctx context.Context, sessionID, input string) (Session, Action, error) {
	s, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		s = Session{ID: sessionID, State: AwaitingUpload}
	} else if err != nil {
		return Session{}, Action{}, fmt.Errorf("load session: %w", err)
	}
	next, act := Transition(s, m.classify.Classify(input))
	next.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, next); err != nil {
		return Session{}, Action{}, fmt.Errorf("save session: %w", err)
	}
	return next, act, nil
}
