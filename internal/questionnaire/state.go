package questionnaire

import "fmt"

// State is the serializable form of a session, used to park traversals in
// the session store between HTTP requests. The graph itself is not part of
// the state; it is static configuration re-attached on restore.
type State struct {
	History       []string          `json:"history"`
	Answers       map[string]Answer `json:"answers"`
	AttachmentURL string            `json:"attachment_url,omitempty"`
	Terminal      bool              `json:"terminal,omitempty"`
}

// Snapshot captures the session's traversal state. The submitting guard is
// deliberately not captured: a restored session is never mid-submission.
func (s *Session) Snapshot() State {
	history := make([]string, len(s.history))
	copy(history, s.history)

	answers := make(map[string]Answer, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}

	return State{
		History:       history,
		Answers:       answers,
		AttachmentURL: s.attachmentURL,
		Terminal:      s.terminal,
	}
}

// Restore rebuilds a session from a snapshot against the given graph. Every
// id in the snapshot's history must resolve, and the first entry must be
// the graph's start node.
func Restore(graph *Graph, state State) (*Session, error) {
	if len(state.History) == 0 {
		return nil, fmt.Errorf("restore session: empty history")
	}
	if state.History[0] != graph.StartID() {
		return nil, fmt.Errorf("restore session: history starts at %q, graph starts at %q", state.History[0], graph.StartID())
	}
	for _, id := range state.History {
		if _, ok := graph.Question(id); !ok {
			return nil, fmt.Errorf("restore session: unknown question %q in history", id)
		}
	}

	answers := state.Answers
	if answers == nil {
		answers = make(map[string]Answer)
	}

	return &Session{
		graph:         graph,
		history:       state.History,
		answers:       answers,
		attachmentURL: state.AttachmentURL,
		terminal:      state.Terminal,
	}, nil
}
