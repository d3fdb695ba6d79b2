// Package help serves the in-app help topics. Topics are structured blocks
// rendered through html/template, so content is always escaped.
package help

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var topicsYAML []byte

var ErrTopicNotFound = errors.New("help topic not found")

// BlockType is the kind of a content block.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockList      BlockType = "list"
)

// Block is one piece of topic content.
type Block struct {
	Type  BlockType `yaml:"type" json:"type"`
	Text  string    `yaml:"text,omitempty" json:"text,omitempty"`
	Items []string  `yaml:"items,omitempty" json:"items,omitempty"`
}

// Topic is a titled help page.
type Topic struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title" json:"title"`
	Blocks []Block `yaml:"blocks" json:"blocks"`
}

var topicTemplate = template.Must(template.New("topic").Parse(
	`<article class="help-topic" id="{{.ID}}"><h1>{{.Title}}</h1>` +
		`{{range .Blocks}}` +
		`{{if eq .Type "heading"}}<h2>{{.Text}}</h2>` +
		`{{else if eq .Type "paragraph"}}<p>{{.Text}}</p>` +
		`{{else if eq .Type "list"}}<ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>` +
		`{{end}}{{end}}</article>`))

// Library is an ordered set of topics.
type Library struct {
	topics []Topic
	byID   map[string]int
}

// Load parses the embedded topics.
func Load() (*Library, error) {
	return Parse(topicsYAML)
}

// Parse reads topics from YAML and validates every block.
func Parse(data []byte) (*Library, error) {
	var topics []Topic
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("parse help topics: %w", err)
	}
	lib := &Library{topics: topics, byID: make(map[string]int, len(topics))}
	for i, t := range topics {
		if t.ID == "" {
			return nil, fmt.Errorf("help topic %d has no id", i)
		}
		if _, dup := lib.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate help topic %q", t.ID)
		}
		for j, b := range t.Blocks {
			switch b.Type {
			case BlockHeading, BlockParagraph:
				if b.Text == "" {
					return nil, fmt.Errorf("help topic %q block %d: %s needs text", t.ID, j, b.Type)
				}
			case BlockList:
				if len(b.Items) == 0 {
					return nil, fmt.Errorf("help topic %q block %d: list needs items", t.ID, j)
				}
			default:
				return nil, fmt.Errorf("help topic %q block %d: unknown block type %q", t.ID, j, b.Type)
			}
		}
		lib.byID[t.ID] = i
	}
	return lib, nil
}

// Topics returns every topic in file order.
func (l *Library) Topics() []Topic {
	return append([]Topic(nil), l.topics...)
}

// Topic looks a topic up by id.
func (l *Library) Topic(id string) (Topic, error) {
	i, ok := l.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return l.topics[i], nil
}

// Render writes the topic as escaped HTML.
func (l *Library) Render(w io.Writer, id string) error {
	t, err := l.Topic(id)
	if err != nil {
		return err
	}
	return topicTemplate.Execute(w, t)
}
