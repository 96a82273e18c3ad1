package port

import (
	"context"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

// NotificationSink persists one notification draft. Implementations assign
// the id and creation timestamp. A returned error covers that single
// recipient only; callers fan out independently per recipient.
type NotificationSink interface {
	Deliver(ctx context.Context, draft domain.NotificationDraft) error
}

// NotificationSinkFunc adapts a plain function to the sink interface.
type NotificationSinkFunc func(ctx context.Context, draft domain.NotificationDraft) error

// Deliver implements NotificationSink.
func (f NotificationSinkFunc) Deliver(ctx context.Context, draft domain.NotificationDraft) error {
	return f(ctx, draft)
}
