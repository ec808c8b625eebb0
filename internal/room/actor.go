// Package room hosts the game coordinator: one actor goroutine per room
// owning the authoritative RoomState, validating every inbound command,
// driving the night flow and fanning state out to participants.
package room

import (
	"context"
	"fmt"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moxuan/werewolf-judge/internal/bus"
	"github.com/moxuan/werewolf-judge/internal/engine"
	"github.com/moxuan/werewolf-judge/internal/flow"
	"github.com/moxuan/werewolf-judge/internal/observability"
	"github.com/moxuan/werewolf-judge/internal/store"
	"github.com/moxuan/werewolf-judge/internal/types"
)

// Internal command types the actor schedules for itself.
const (
	cmdWolfDeadline = "wolf_deadline"
	cmdStepDeadline = "step_deadline"
	cmdResumeNight  = "resume_night"
)

type deadlinePayload struct {
	Seq  int `json:"seq"`
	Step int `json:"step"`
}

type CommandRequest struct {
	Cmd      types.CommandEnvelope
	Response chan CommandResponse
}

type CommandResponse struct {
	Result *types.CommandResult
	Err    error
}

// Subscriber is one live delivery channel to a participant (a websocket
// session). A participant may hold several.
type Subscriber struct {
	UID  string
	Send func(types.Envelope)
}

// Options tunes one room's timers.
type Options struct {
	WolfVoteTimeout time.Duration
	// StepTimeout != 0 writes an automatic skip when a role stalls.
	StepTimeout time.Duration
}

// Actor owns one room. All state mutation happens on its loop goroutine;
// everything else talks to it through Dispatch.
type Actor struct {
	Code string

	ctx     context.Context
	onCrash func(roomCode string)
	onEnd   func(roomCode string)

	state *engine.RoomState
	ctrl  *flow.Controller

	bus     bus.Bus
	store   store.SnapshotStore
	logger  *zap.Logger
	metrics *observability.Metrics
	opts    Options
	rng     *rand.Rand

	cmdCh chan CommandRequest

	subsMu sync.RWMutex
	subs   map[string]*Subscriber

	viewMu sync.RWMutex
	view   engine.PublicView

	// pending parks private reveals for participants with no live channel;
	// they replay in order on rejoin.
	pending map[string][]types.Envelope

	// deadlineSeq invalidates timers from earlier steps or nights.
	deadlineSeq int

	snapCh   chan []byte
	snapDone chan struct{}
}

func newActor(ctx context.Context, st *engine.RoomState, b bus.Bus, sn store.SnapshotStore,
	logger *zap.Logger, metrics *observability.Metrics, opts Options, onCrash func(string)) *Actor {

	a := &Actor{
		Code:     st.RoomCode,
		ctx:      ctx,
		onCrash:  onCrash,
		state:    st,
		ctrl:     flow.New(logger),
		bus:      b,
		store:    sn,
		logger:   logger.With(zap.String("room_code", st.RoomCode)),
		metrics:  metrics,
		opts:     opts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cmdCh:    make(chan CommandRequest, 256),
		subs:     make(map[string]*Subscriber),
		pending:  make(map[string][]types.Envelope),
		snapCh:   make(chan []byte, 1),
		snapDone: make(chan struct{}),
	}
	if st.Status == engine.StatusOngoing {
		if st.Plan == nil {
			// The snapshot claimed an ongoing night but carries no way to
			// rebuild it; refuse to run rather than guess.
			panic(fmt.Sprintf("room %s ongoing without a night plan", st.RoomCode))
		}
		a.ctrl.Resume(st.CurrentStep, len(st.Plan.Steps))
	}
	a.cacheView()
	go a.snapshotLoop()
	go a.loop()
	if st.Status == engine.StatusOngoing {
		// Replay the current step's cue so the host picks the night back
		// up where the snapshot left it.
		a.dispatchAsync(types.CommandEnvelope{RoomCode: st.RoomCode, Type: cmdResumeNight})
	}
	return a
}

func (a *Actor) loop() {
	defer close(a.snapCh)
	defer func() {
		if recovered := recover(); recovered != nil {
			a.logger.Error("room actor crashed",
				zap.Any("panic", recovered),
				zap.ByteString("stack", debug.Stack()))
			a.publishFault(fmt.Sprintf("internal error: %v", recovered))
			if a.onCrash != nil {
				go a.onCrash(a.Code)
			}
		}
	}()

	for {
		select {
		case <-a.ctx.Done():
			return
		case req := <-a.cmdCh:
			result, err, fatal := a.executeCommand(req.Cmd)
			if req.Response != nil {
				req.Response <- CommandResponse{Result: result, Err: err}
			}
			if fatal {
				panic(err)
			}
		}
	}
}

func (a *Actor) executeCommand(cmd types.CommandEnvelope) (result *types.CommandResult, err error, fatal bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			a.logger.Error("room command panic",
				zap.String("command_type", cmd.Type),
				zap.Any("panic", recovered),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("room actor panic: %v", recovered)
			fatal = true
		}
	}()
	start := time.Now()
	result, err = a.handleCommand(cmd)
	if a.metrics != nil {
		a.metrics.CommandLatency.WithLabelValues(cmd.Type).
			Observe(float64(time.Since(start).Milliseconds()))
	}
	return result, err, false
}

// Dispatch hands a command to the room and waits for its result.
func (a *Actor) Dispatch(cmd types.CommandEnvelope) CommandResponse {
	ch := make(chan CommandResponse, 1)
	select {
	case a.cmdCh <- CommandRequest{Cmd: cmd, Response: ch}:
	case <-a.ctx.Done():
		return CommandResponse{Err: fmt.Errorf("room actor stopped")}
	}

	select {
	case resp := <-ch:
		return resp
	case <-a.ctx.Done():
		return CommandResponse{Err: fmt.Errorf("room actor stopped")}
	}
}

// dispatchAsync injects a command without waiting; used by timers.
func (a *Actor) dispatchAsync(cmd types.CommandEnvelope) {
	select {
	case a.cmdCh <- CommandRequest{Cmd: cmd}:
	case <-a.ctx.Done():
	}
}

func (a *Actor) Subscribe(id string, s *Subscriber) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	a.subs[id] = s
}

func (a *Actor) Unsubscribe(id string) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	delete(a.subs, id)
}

// State returns the latest public projection without entering the loop.
func (a *Actor) State() engine.PublicView {
	a.viewMu.RLock()
	defer a.viewMu.RUnlock()
	return a.view
}

func (a *Actor) cacheView() {
	v := a.state.Public()
	a.viewMu.Lock()
	a.view = v
	a.viewMu.Unlock()
}

// --- outbound helpers -------------------------------------------------

func (a *Actor) envelope(t types.MsgType, payload any) types.Envelope {
	return types.Envelope{
		Type:              t,
		RoomCode:          a.Code,
		Payload:           types.MustMarshal(payload),
		ServerTimestampMs: time.Now().UnixMilli(),
	}
}

// broadcast fans a public envelope to every live session and mirrors it on
// the bus.
func (a *Actor) broadcast(env types.Envelope) {
	a.subsMu.RLock()
	for _, sub := range a.subs {
		sub.Send(env)
	}
	a.subsMu.RUnlock()
	if err := a.bus.Broadcast(a.ctx, a.Code, env); err != nil {
		a.logger.Warn("bus broadcast failed", zap.Error(err))
	}
}

// sendTo delivers a private envelope to uid. Undeliverable reveals are
// parked and replayed in order on rejoin; transient messages are dropped.
func (a *Actor) sendTo(uid string, env types.Envelope, park bool) {
	env.ToUID = uid
	delivered := false
	a.subsMu.RLock()
	for _, sub := range a.subs {
		if sub.UID == uid {
			sub.Send(env)
			delivered = true
		}
	}
	a.subsMu.RUnlock()
	if !delivered && park {
		a.pending[uid] = append(a.pending[uid], env)
	}
	if err := a.bus.SendToUser(a.ctx, a.Code, uid, env); err != nil {
		a.logger.Warn("bus private send failed", zap.String("uid", uid), zap.Error(err))
	}
}

// sendToHost carries audio cues and host-only notices.
func (a *Actor) sendToHost(env types.Envelope) {
	env.ToUID = a.state.HostUID
	a.subsMu.RLock()
	for _, sub := range a.subs {
		if sub.UID == a.state.HostUID {
			sub.Send(env)
		}
	}
	a.subsMu.RUnlock()
	if err := a.bus.SendToHost(a.ctx, a.Code, env); err != nil {
		a.logger.Warn("bus host send failed", zap.Error(err))
	}
}

func (a *Actor) publishFault(msg string) {
	a.broadcast(a.envelope(types.MsgRoomFault, RoomFaultPayload{Message: msg}))
}

// --- snapshots --------------------------------------------------------

// trySnapshot queues the current state for a best-effort durable write.
// Only the newest pending snapshot survives; the engine never blocks on
// the store.
func (a *Actor) trySnapshot() {
	raw, err := engine.MarshalSnapshot(a.state)
	if err != nil {
		a.logger.Error("marshal snapshot failed", zap.Error(err))
		return
	}
	for {
		select {
		case a.snapCh <- raw:
			return
		default:
			select {
			case <-a.snapCh:
			default:
			}
		}
	}
}

func (a *Actor) snapshotLoop() {
	defer close(a.snapDone)
	for raw := range a.snapCh {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := a.store.Save(ctx, a.Code, raw)
		cancel()
		if err != nil {
			if a.metrics != nil {
				a.metrics.SnapshotFailures.Inc()
			}
			a.logger.Warn("snapshot write failed", zap.Error(err))
		}
	}
}

// --- timers -----------------------------------------------------------

// scheduleDeadline arms a timer that re-enters the actor through the
// inbox. seq pins it to the current step; a stale timer is a logged no-op.
func (a *Actor) scheduleDeadline(cmdType string, d time.Duration, step int) {
	seq := a.deadlineSeq
	payload := types.MustMarshal(deadlinePayload{Seq: seq, Step: step})
	time.AfterFunc(d, func() {
		a.dispatchAsync(types.CommandEnvelope{
			RoomCode: a.Code,
			Type:     cmdType,
			Payload:  payload,
		})
	})
}
