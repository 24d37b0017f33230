package sem

import (
	"context"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Diagnostic is one semantic problem found during resolution.
type Diagnostic struct {
	Span    token.Span
	Message string
	Cause   error
}

// RecognitionContext accumulates diagnostics during one resolution
// pass. It is purely accumulative: resolution never consults it for
// control decisions. One instance serves exactly one pass and must not
// be shared between concurrently resolved statements.
type RecognitionContext struct {
	ctx        context.Context
	diags      []Diagnostic
	terminated bool
}

// NewRecognitionContext creates a diagnostics sink for one pass. The
// context carries cancellation: a cancelled pass stops at the next
// rows-source entry with a single terminal diagnostic.
func NewRecognitionContext(ctx context.Context) *RecognitionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &RecognitionContext{ctx: ctx}
}

// AppendError records a diagnostic at the given span.
func (r *RecognitionContext) AppendError(span token.Span, msg string) {
	r.diags = append(r.diags, Diagnostic{Span: span, Message: msg})
}

// AppendErrorCause records a diagnostic with an underlying error.
func (r *RecognitionContext) AppendErrorCause(span token.Span, msg string, cause error) {
	r.diags = append(r.diags, Diagnostic{Span: span, Message: msg, Cause: cause})
}

// AppendEntryError records a diagnostic at a symbol occurrence.
func (r *RecognitionContext) AppendEntryError(e *SymbolEntry, msg string) {
	r.AppendError(e.Span(), msg)
}

// Diagnostics returns all recorded diagnostics in order.
func (r *RecognitionContext) Diagnostics() []Diagnostic {
	return r.diags
}

// interrupted reports pass cancellation. The first observation emits
// the terminal diagnostic; the pass then unwinds without leaving any
// rows source partially memoized.
func (r *RecognitionContext) interrupted() error {
	if err := r.ctx.Err(); err != nil {
		if !r.terminated {
			r.terminated = true
			r.diags = append(r.diags, Diagnostic{Message: "resolution interrupted", Cause: err})
		}
		return err
	}
	return nil
}
