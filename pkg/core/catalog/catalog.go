package catalog

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// QuestionType enumerates the answer kinds the questionnaire supports.
type QuestionType string

const (
	TypeText         QuestionType = "text"
	TypeSingleSelect QuestionType = "single_select"
	TypeMultiSelect  QuestionType = "multi_select"
	TypeNumber       QuestionType = "number"
	TypeBoolean      QuestionType = "boolean"
)

// Question is one immutable questionnaire item. Choices are only present for
// select types. DependsOn is declared for future conditional flows but the
// current rule set never evaluates it.
type Question struct {
	ID        string       `json:"id"`
	Prompt    string       `json:"question"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	Choices   []string     `json:"options,omitempty"`
	HelpText  string       `json:"help_text,omitempty"`
	DependsOn string       `json:"depends_on,omitempty"`
}

// Catalog is an ordered, immutable question list. Build one at process start
// and share it; nothing mutates it afterwards.
type Catalog struct {
	questions []Question
	byID      map[string]int
}

// New validates the question list and wraps it in a Catalog.
func New(questions []Question) (*Catalog, error) {
	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d has empty id", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id: %s", q.ID)
		}
		switch q.Type {
		case TypeText, TypeNumber, TypeBoolean:
			if len(q.Choices) > 0 {
				return nil, fmt.Errorf("question %s: choices not allowed for type %s", q.ID, q.Type)
			}
		case TypeSingleSelect, TypeMultiSelect:
			if len(q.Choices) == 0 {
				return nil, fmt.Errorf("question %s: select type requires choices", q.ID)
			}
		default:
			return nil, fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
		}
		byID[q.ID] = i
	}
	return &Catalog{questions: questions, byID: byID}, nil
}

// LoadFile reads a catalog from an Hjson file. Hjson lets the question base be
// maintained by hand with comments, the same way prompt resources are.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var doc struct {
		Questions []Question `json:"questions"`
	}
	if err := hjson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no questions", path)
	}
	return New(doc.Questions)
}

// Len returns the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at position i, or nil when i is past the end.
func (c *Catalog) At(i int) *Question {
	if i < 0 || i >= len(c.questions) {
		return nil
	}
	q := c.questions[i]
	return &q
}

// ByID looks a question up by its stable id.
func (c *Catalog) ByID(id string) (*Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	q := c.questions[i]
	return &q, true
}

// Questions returns a copy of the ordered question list.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}
