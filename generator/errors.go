package generator

import "errors"

var (
	// ErrGenerationFailed matches every failed draft generation.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrRefineFailed matches every failed refinement.
	ErrRefineFailed = errors.New("refine failed")
)

const (
	generationFailedMessage = "Failed to generate the document draft. The AI service may be unavailable or experienced an error."
	refineFailedMessage     = "Failed to refine the text. The AI service may be unavailable or experienced an error."
)

// ServiceError is the single failure shape of the drafting boundary.
// Message is safe to show to users; Detail carries the diagnostic.
type ServiceError struct {
	Kind    error
	Message string
	Detail  string
	cause   error
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + " (" + e.Detail + ")"
}

func (e *ServiceError) Is(target error) bool {
	return target == e.Kind
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

func generationFailed(cause error) *ServiceError {
	return &ServiceError{Kind: ErrGenerationFailed, Message: generationFailedMessage, Detail: cause.Error(), cause: cause}
}

func refineFailed(cause error) *ServiceError {
	return &ServiceError{Kind: ErrRefineFailed, Message: refineFailedMessage, Detail: cause.Error(), cause: cause}
}

// UserMessage returns the text to show for err: the ServiceError message when
// there is one, otherwise err's own text.
func UserMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
