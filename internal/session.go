package internal

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Collaborator is a participant in a session
type Collaborator struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"` // "driver", "navigator", free-form
}

// CollaboratorSeed names a collaborator to add when a session is created
type CollaboratorSeed struct {
	Name string
	Role string
}

// ChatMessage is a message posted to a session's chat log
type ChatMessage struct {
	Author    string `json:"author" yaml:"author"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// Session binds collaborators, chat and run history to one notebook
type Session struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	NotebookID    string          `json:"notebook_id" yaml:"notebook_id"`
	Collaborators []*Collaborator `json:"collaborators" yaml:"collaborators"`
	Chat          []*ChatMessage  `json:"chat" yaml:"chat"`
	Checkpoints   []string        `json:"checkpoints" yaml:"checkpoints"`
}

// Checkpoint formats a run marker for the session's checkpoint log
func Checkpoint(cellID, timestamp string) string {
	return cellID + ":" + timestamp
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Collaborators = make([]*Collaborator, len(s.Collaborators))
	for i, c := range s.Collaborators {
		person := *c
		out.Collaborators[i] = &person
	}
	out.Chat = make([]*ChatMessage, len(s.Chat))
	for i, m := range s.Chat {
		msg := *m
		out.Chat[i] = &msg
	}
	out.Checkpoints = slices.Clone(s.Checkpoints)
	if out.Checkpoints == nil {
		out.Checkpoints = []string{}
	}
	return &out
}

func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == "" {
		return fmt.Errorf("session is missing an id")
	}
	if raw.NotebookID == "" {
		return fmt.Errorf("session %s is missing a notebook_id", raw.ID)
	}
	if raw.Name == "" {
		raw.Name = defaultSessionName
	}
	if raw.Collaborators == nil {
		raw.Collaborators = []*Collaborator{}
	}
	if raw.Chat == nil {
		raw.Chat = []*ChatMessage{}
	}
	if raw.Checkpoints == nil {
		raw.Checkpoints = []string{}
	}
	*s = Session(raw)
	return nil
}
