package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"go.uber.org/zap"
)

// ErrorType is the run stage that failed.
type ErrorType string

const (
	ErrTypeNavigation   ErrorType = "NAVIGATION"
	ErrTypeExtraction   ErrorType = "EXTRACTION"
	ErrTypePersistence  ErrorType = "PERSISTENCE"
	ErrTypeNotification ErrorType = "NOTIFICATION"
	ErrTypeConfig       ErrorType = "CONFIG"
	ErrTypeUnknown      ErrorType = "UNKNOWN"
)

// DomainError is a failure of one run stage, optionally tied to the career
// site it happened on. Stack is captured where the error was created.
type DomainError struct {
	Type  ErrorType
	Site  string
	Op    string
	Err   error
	Stack []byte
}

func (e *DomainError) Error() string {
	prefix := string(e.Type)
	if e.Site != "" {
		prefix += " [" + e.Site + "]"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Op)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

// WithSite sets the site the error belongs to and returns e.
func (e *DomainError) WithSite(site string) *DomainError {
	e.Site = site
	return e
}

func newError(errType ErrorType, op string, err error) *DomainError {
	var stack []byte
	var ge *goerrors.Error
	switch {
	case stderrors.As(err, &ge):
		stack = ge.Stack()
	case err != nil:
		stack = goerrors.Wrap(err, 2).Stack()
	default:
		stack = goerrors.Wrap(op, 2).Stack()
	}
	return &DomainError{Type: errType, Op: op, Err: err, Stack: stack}
}

// Navigation covers reaching a page: the landing page fetch, a missing
// board link, or the board not loading. site may be empty when the caller
// only knows the URL.
func Navigation(site, op string, err error) *DomainError {
	return newError(ErrTypeNavigation, op, err).WithSite(site)
}

// Extraction covers reading listings off a rendered board.
func Extraction(site, op string, err error) *DomainError {
	return newError(ErrTypeExtraction, op, err).WithSite(site)
}

func Persistence(op string, err error) *DomainError {
	return newError(ErrTypePersistence, op, err)
}

func Notification(op string, err error) *DomainError {
	return newError(ErrTypeNotification, op, err)
}

func Config(op string, err error) *DomainError {
	return newError(ErrTypeConfig, op, err)
}

// TypeOf returns the type of the outermost DomainError in err's chain.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ErrTypeUnknown
}

// AttachSite fills in site on the outermost DomainError that has none.
// Errors outside the taxonomy are returned unchanged.
func AttachSite(err error, site string) error {
	var de *DomainError
	if stderrors.As(err, &de) && de.Site == "" {
		de.Site = site
	}
	return err
}

// Fields are the log fields for err. The site is already part of the message.
func Fields(err error) []zap.Field {
	return []zap.Field{zap.String("error_type", string(TypeOf(err))), zap.Error(err)}
}

// Stack returns the creation stack of the outermost DomainError, or nil.
func Stack(err error) []byte {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.StackTrace()
	}
	return nil
}

// Log writes err at error level with Fields, and its stack at debug level.
func Log(log *zap.Logger, msg string, err error, extra ...zap.Field) {
	log.Error(msg, append(extra, Fields(err)...)...)
	if ce := log.Check(zap.DebugLevel, "stack for: "+msg); ce != nil {
		ce.Write(zap.ByteString("stack", Stack(err)))
	}
}
