// Package bus carries host envelopes to participants. The websocket layer
// delivers to connected sessions directly; the bus is the room-scoped
// transport contract (broadcast, send-to-participant, send-to-host and
// channel lifecycle), mirrored to external consumers over AMQP.
package bus

import (
	"context"

	"github.com/moxuan/werewolf-judge/internal/types"
)

// Bus is the four-operation transport the coordinator publishes through.
// Delivery to any one participant is FIFO; failures must not stall the
// caller.
type Bus interface {
	Broadcast(ctx context.Context, roomCode string, env types.Envelope) error
	SendToUser(ctx context.Context, roomCode, uid string, env types.Envelope) error
	SendToHost(ctx context.Context, roomCode string, env types.Envelope) error

	// EnsureRoom provisions the room-scoped channel; ReleaseRoom tears it
	// down once the room ends.
	EnsureRoom(ctx context.Context, roomCode string) error
	ReleaseRoom(ctx context.Context, roomCode string) error

	Close() error
}
