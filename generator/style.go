package generator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownStyle is returned for a style id nobody registered.
var ErrUnknownStyle = errors.New("unknown refine style")

// Style is a rewrite directive. New styles are added with Register; callers
// look them up by id and never branch on a particular one.
type Style struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	// Instruction is the sentence the model receives.
	Instruction string `json:"-"`
}

var (
	stylesMu sync.RWMutex
	styles   []Style
)

func init() {
	for _, s := range []Style{
		{
			ID:          "concise",
			Label:       "Concise",
			Description: "Tighten wording and remove redundancy.",
			Instruction: "Make the text as short as possible without losing any obligation, condition, or defined term.",
		},
		{
			ID:          "formal",
			Label:       "Formal",
			Description: "Raise the register to formal legal drafting.",
			Instruction: "Use a formal legal register with precise, unambiguous terms.",
		},
		{
			ID:          "simplified",
			Label:       "Simplified language",
			Description: "Plain language a non-lawyer can follow.",
			Instruction: "Use plain language and short sentences that a reader without legal training can understand.",
		},
		{
			ID:          "clarity",
			Label:       "Clarity",
			Description: "Improve clarity, conciseness, and professionalism.",
			Instruction: "Improve clarity, conciseness, and professionalism.",
		},
	} {
		if err := Register(s); err != nil {
			panic(err)
		}
	}
}

// Register adds a style to the registry.
func Register(s Style) error {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		return errors.New("style id is required")
	}
	if strings.TrimSpace(s.Instruction) == "" {
		return fmt.Errorf("style %q: instruction is required", s.ID)
	}
	if s.Label == "" {
		s.Label = s.ID
	}
	stylesMu.Lock()
	defer stylesMu.Unlock()
	for _, existing := range styles {
		if existing.ID == s.ID {
			return fmt.Errorf("style %q already registered", s.ID)
		}
	}
	styles = append(styles, s)
	return nil
}

// LookupStyle returns the registered style with the given id.
func LookupStyle(id string) (Style, error) {
	stylesMu.RLock()
	defer stylesMu.RUnlock()
	for _, s := range styles {
		if s.ID == id {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, id)
}

// Styles returns the registered styles in registration order.
func Styles() []Style {
	stylesMu.RLock()
	defer stylesMu.RUnlock()
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}
