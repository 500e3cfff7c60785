package bus

import (
	"context"

	"github.com/yungbote/admitbridge-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.StudentCreatedEvent) error
	StartForwarder(ctx context.Context, onEvent func(evt realtime.StudentCreatedEvent)) error
	Close() error
}
