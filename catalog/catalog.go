package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtinTemplates []byte

// ErrTemplateNotFound is returned when a template id is not in the catalog.
var ErrTemplateNotFound = errors.New("template not found")

// FieldKind selects the input widget for a field.
type FieldKind string

const (
	KindSingleLine FieldKind = "single-line"
	KindMultiLine  FieldKind = "multi-line"
)

// Field describes one form input a template requires.
type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder"`
}

// Template is an immutable document template descriptor. Fields keep the
// order they were declared in.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Fields      []Field `json:"fields"`
}

// Field looks up a declared field by key.
func (t Template) Field(key string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// LabeledInput pairs a field label with the value the user entered.
type LabeledInput struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Labeled returns the inputs in field order, keyed by label. Undeclared keys
// are dropped.
func (t Template) Labeled(inputs map[string]string) []LabeledInput {
	out := make([]LabeledInput, 0, len(t.Fields))
	for _, f := range t.Fields {
		v, ok := inputs[f.Key]
		if !ok {
			continue
		}
		out = append(out, LabeledInput{Label: f.Label, Value: strings.TrimSpace(v)})
	}
	return out
}

// Catalog is the static registry of templates, built once at startup.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

// Default returns the catalog of built-in templates.
func Default() *Catalog {
	c, err := Parse(builtinTemplates)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in templates: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}
	return Parse(data)
}

type catalogFile struct {
	Templates []templateSpec `yaml:"templates"`
}

type templateSpec struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	DisplayName string    `yaml:"displayName"`
	Description string    `yaml:"description"`
	Category    string    `yaml:"category"`
	Inputs      yaml.Node `yaml:"inputs"`
}

type fieldSpec struct {
	Label       string `yaml:"label"`
	Kind        string `yaml:"kind"`
	Placeholder string `yaml:"placeholder"`
}

// Parse builds a catalog from YAML. The inputs mapping is walked as a node so
// field order survives decoding.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if len(file.Templates) == 0 {
		return nil, errors.New("templates: none defined")
	}

	c := &Catalog{byID: make(map[string]int, len(file.Templates))}
	for _, spec := range file.Templates {
		t, err := spec.build()
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

func (s templateSpec) build() (Template, error) {
	id := strings.TrimSpace(s.ID)
	if id == "" {
		return Template{}, errors.New("template: id is required")
	}
	t := Template{
		ID:          id,
		Name:        s.Name,
		DisplayName: s.DisplayName,
		Description: s.Description,
		Category:    s.Category,
	}
	if t.DisplayName == "" {
		t.DisplayName = t.Name
	}
	if s.Inputs.Kind != yaml.MappingNode || len(s.Inputs.Content) == 0 {
		return Template{}, fmt.Errorf("template %q: inputs must be a non-empty mapping", id)
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(s.Inputs.Content); i += 2 {
		key := s.Inputs.Content[i].Value
		var fs fieldSpec
		if err := s.Inputs.Content[i+1].Decode(&fs); err != nil {
			return Template{}, fmt.Errorf("template %q field %q: %w", id, key, err)
		}
		if seen[key] {
			return Template{}, fmt.Errorf("template %q: duplicate field %q", id, key)
		}
		seen[key] = true

		kind := FieldKind(fs.Kind)
		switch kind {
		case "":
			kind = KindSingleLine
		case KindSingleLine, KindMultiLine:
		default:
			return Template{}, fmt.Errorf("template %q field %q: unknown kind %q", id, key, fs.Kind)
		}
		label := fs.Label
		if label == "" {
			label = key
		}
		t.Fields = append(t.Fields, Field{Key: key, Label: label, Kind: kind, Placeholder: fs.Placeholder})
	}
	return t, nil
}

// List returns templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Get returns the template with the given id.
func (c *Catalog) Get(id string) (Template, error) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return c.templates[i], nil
}
