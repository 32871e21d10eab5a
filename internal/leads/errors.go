package leads

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"luxeleads/internal/validation"
)

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid status")
)

// ValidationError reports lead form fields that failed validation.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid lead form: %s", strings.Join(names, ", "))
}
