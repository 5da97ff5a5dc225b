package bus

import (
	"context"

	"github.com/mirrorwell/mirrorwell-backend/internal/realtime"
)

// Bus fans realtime messages out across instances. A single-instance deploy
// runs without one; the hub then only reaches locally connected clients.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
