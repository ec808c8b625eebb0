package room

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moxuan/werewolf-judge/internal/bus"
	"github.com/moxuan/werewolf-judge/internal/engine"
	"github.com/moxuan/werewolf-judge/internal/observability"
	"github.com/moxuan/werewolf-judge/internal/store"
	"github.com/moxuan/werewolf-judge/internal/template"
	"github.com/moxuan/werewolf-judge/internal/types"
)

// Manager is the registry of live rooms: it allocates codes, spawns
// actors, recovers them from snapshots and tears them down.
type Manager struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	actors  map[string]*Actor
	cancels map[string]context.CancelFunc

	store     store.SnapshotStore
	bus       bus.Bus
	logger    *zap.Logger
	metrics   *observability.Metrics
	templates *template.Registry
	opts      Options

	rng *rand.Rand
}

func NewManager(ctx context.Context, st store.SnapshotStore, b bus.Bus, logger *zap.Logger,
	metrics *observability.Metrics, templates *template.Registry, opts Options) *Manager {

	if ctx == nil {
		ctx = context.Background()
	}
	mgrCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		ctx:       mgrCtx,
		cancel:    cancel,
		actors:    make(map[string]*Actor),
		cancels:   make(map[string]context.CancelFunc),
		store:     st,
		bus:       b,
		logger:    logger,
		metrics:   metrics,
		templates: templates,
		opts:      opts,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *Manager) Close() {
	m.cancel()
	if err := m.bus.Close(); err != nil {
		m.logger.Warn("bus close failed", zap.Error(err))
	}
}

// CreateRoom allocates a fresh 4-digit code and spawns the room's actor.
func (m *Manager) CreateRoom(ctx context.Context, hostUID, templateName string) (*Actor, error) {
	tmpl, ok := m.templates.Get(templateName)
	if !ok {
		return nil, types.NewError(types.ErrBadRequest, fmt.Sprintf("unknown template %q", templateName))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := m.allocateCodeLocked()
	if err != nil {
		return nil, err
	}
	if err := m.bus.EnsureRoom(ctx, code); err != nil {
		return nil, types.WrapError(types.ErrInternal, "cannot provision room channel", err)
	}
	state := engine.NewRoomState(code, hostUID, tmpl)
	return m.spawnLocked(state), nil
}

// allocateCodeLocked draws uniform 4-digit codes until one misses the
// live-room set.
func (m *Manager) allocateCodeLocked() (string, error) {
	for attempt := 0; attempt < 200; attempt++ {
		code := fmt.Sprintf("%04d", m.rng.Intn(10000))
		if _, taken := m.actors[code]; !taken {
			return code, nil
		}
	}
	return "", types.NewError(types.ErrInternal, "room codes exhausted")
}

func (m *Manager) spawnLocked(state *engine.RoomState) *Actor {
	actorCtx, cancel := context.WithCancel(m.ctx)
	a := newActor(actorCtx, state, m.bus, m.store, m.logger, m.metrics, m.opts, m.handleActorCrash)
	a.onEnd = m.EndRoom
	m.actors[state.RoomCode] = a
	m.cancels[state.RoomCode] = cancel
	if m.metrics != nil {
		m.metrics.ActiveRooms.Inc()
	}
	return a
}

// Get returns a live actor.
func (m *Manager) Get(code string) (*Actor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actors[code]
	return a, ok
}

// GetOrRecover returns the live actor for code, rehydrating it from the
// durable snapshot after a host restart.
func (m *Manager) GetOrRecover(ctx context.Context, code string) (*Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actors[code]; ok {
		return a, nil
	}
	raw, err := m.store.Load(ctx, code)
	if err != nil {
		return nil, types.WrapError(types.ErrInternal, "snapshot load failed", err)
	}
	if raw == nil {
		return nil, types.NewError(types.ErrNotFound, "room not found")
	}
	state, err := engine.UnmarshalSnapshot(raw)
	if err != nil {
		return nil, types.WrapError(types.ErrInternal, "snapshot decode failed", err)
	}
	if err := m.bus.EnsureRoom(ctx, code); err != nil {
		return nil, types.WrapError(types.ErrInternal, "cannot provision room channel", err)
	}
	m.logger.Info("room recovered from snapshot",
		zap.String("room_code", code), zap.String("status", string(state.Status)))
	return m.spawnLocked(state), nil
}

// handleActorCrash rebuilds a crashed room from its last snapshot; the
// in-memory run that panicked is discarded.
func (m *Manager) handleActorCrash(code string) {
	reloadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m.mu.Lock()
	if stop, ok := m.cancels[code]; ok {
		stop()
	}
	delete(m.actors, code)
	delete(m.cancels, code)
	if m.metrics != nil {
		m.metrics.ActiveRooms.Dec()
	}
	m.mu.Unlock()

	raw, err := m.store.Load(reloadCtx, code)
	if err != nil || raw == nil {
		m.logger.Error("cannot restart crashed room, no snapshot",
			zap.String("room_code", code), zap.Error(err))
		return
	}
	state, err := engine.UnmarshalSnapshot(raw)
	if err != nil {
		m.logger.Error("cannot restart crashed room, snapshot corrupt",
			zap.String("room_code", code), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.spawnLocked(state)
	m.mu.Unlock()
	m.logger.Warn("room actor restarted", zap.String("room_code", code))
}

// EndRoom stops the actor, releases the room channel and drops the
// snapshot.
func (m *Manager) EndRoom(code string) {
	m.mu.Lock()
	_, live := m.actors[code]
	if stop, ok := m.cancels[code]; ok {
		stop()
	}
	delete(m.actors, code)
	delete(m.cancels, code)
	if live && m.metrics != nil {
		m.metrics.ActiveRooms.Dec()
	}
	m.mu.Unlock()
	if !live {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.bus.ReleaseRoom(ctx, code); err != nil {
		m.logger.Warn("release room channel failed", zap.String("room_code", code), zap.Error(err))
	}
	if err := m.store.Delete(ctx, code); err != nil {
		m.logger.Warn("delete room snapshot failed", zap.String("room_code", code), zap.Error(err))
	}
	m.logger.Info("room ended", zap.String("room_code", code))
}

// Dispatch routes a command to the room named in its envelope, recovering
// the room from storage if needed.
func (m *Manager) Dispatch(ctx context.Context, cmd types.CommandEnvelope) CommandResponse {
	a, err := m.GetOrRecover(ctx, cmd.RoomCode)
	if err != nil {
		return CommandResponse{Err: err}
	}
	return a.Dispatch(cmd)
}
