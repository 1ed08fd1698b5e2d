package service

import (
	"errors"
	"fmt"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
)

// Business-rule failures. These are expected traffic, returned to the
// caller as-is and never retried or logged as system errors.
var (
	// ErrNotFound covers both a genuinely unknown claim and a claim the
	// caller is not allowed to know exists.
	ErrNotFound = errors.New("não encontrado ou acesso negado")

	// ErrForbidden means the caller is authenticated but lacks the
	// capability, in a context where existence is already implied.
	ErrForbidden = errors.New("acesso negado")

	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrUserInactive       = errors.New("usuário inativo")
	ErrEmailTaken         = errors.New("email já cadastrado")
)

// ValidationError malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError the requested status change is not permitted for
// the caller's role. Carries the offending states so the message can be
// surfaced verbatim as a form error.
type InvalidTransitionError struct {
	Role entity.Role
	From entity.ClaimStatus
	To   entity.ClaimStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("role %s cannot transition from %s to %s", e.Role, e.From, e.To)
}
