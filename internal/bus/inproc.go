package bus

import (
	"context"
	"sync"

	"github.com/moxuan/werewolf-judge/internal/types"
)

// InprocBus is the in-memory bus used when no broker is configured and by
// the engine tests. It records every envelope in order and can hand a
// participant their private stream.
type InprocBus struct {
	mu    sync.Mutex
	rooms map[string][]types.Envelope
}

func NewInprocBus() *InprocBus {
	return &InprocBus{rooms: make(map[string][]types.Envelope)}
}

func (b *InprocBus) EnsureRoom(_ context.Context, roomCode string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.rooms[roomCode]; !ok {
		b.rooms[roomCode] = nil
	}
	return nil
}

func (b *InprocBus) ReleaseRoom(_ context.Context, roomCode string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms, roomCode)
	return nil
}

func (b *InprocBus) Broadcast(_ context.Context, roomCode string, env types.Envelope) error {
	return b.record(roomCode, env)
}

func (b *InprocBus) SendToUser(_ context.Context, roomCode, uid string, env types.Envelope) error {
	env.ToUID = uid
	return b.record(roomCode, env)
}

func (b *InprocBus) SendToHost(_ context.Context, roomCode string, env types.Envelope) error {
	env.ToUID = "host"
	return b.record(roomCode, env)
}

func (b *InprocBus) record(roomCode string, env types.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms[roomCode] = append(b.rooms[roomCode], env)
	return nil
}

func (b *InprocBus) Close() error { return nil }

// Messages returns a copy of everything published to roomCode, in order.
func (b *InprocBus) Messages(roomCode string) []types.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Envelope, len(b.rooms[roomCode]))
	copy(out, b.rooms[roomCode])
	return out
}

// MessagesTo filters the room stream down to one recipient's private
// messages.
func (b *InprocBus) MessagesTo(roomCode, uid string) []types.Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []types.Envelope
	for _, env := range b.rooms[roomCode] {
		if env.ToUID == uid {
			out = append(out, env)
		}
	}
	return out
}
