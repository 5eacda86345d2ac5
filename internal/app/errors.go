package app

import "errors"

// Kind classifies service errors so the HTTP layer can translate them
// without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindMalformedID
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMalformedID:
		return "malformed_id"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func MalformedID(message string) *Error {
	return &Error{Kind: KindMalformedID, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns KindInternal for errors that carry no kind.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

var (
	ErrMalformedID       = MalformedID("malformatted id")
	ErrInvalidCredential = Unauthorized("invalid username or password")
	ErrTokenMissing      = Unauthorized("token missing")
	ErrTokenInvalid      = Unauthorized("token invalid")
	ErrTokenExpired      = Unauthorized("token expired")
	ErrUserNotFound      = Unauthorized("user not found")
	ErrNotOwner          = Unauthorized("only the creator can delete a blog")
	ErrBlogNotFound      = NotFound("blog not found")

	ErrPasswordRequired = Validation("Password is required")
	ErrPasswordTooShort = Validation("Password must be at least 3 characters long")
	ErrUsernameRequired = Validation("Username is required")
	ErrUsernameTooShort = Validation("Username must be at least 3 characters long")
	ErrUsernameTaken    = Validation("username must be unique")
	ErrTitleRequired    = Validation("title is required")
	ErrURLRequired      = Validation("url is required")
	ErrOwnerMissing     = Validation("owner does not exist")
)
