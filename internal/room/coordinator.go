package room

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/moxuan/werewolf-judge/internal/action"
	"github.com/moxuan/werewolf-judge/internal/engine"
	"github.com/moxuan/werewolf-judge/internal/flow"
	"github.com/moxuan/werewolf-judge/internal/night"
	"github.com/moxuan/werewolf-judge/internal/roles"
	"github.com/moxuan/werewolf-judge/internal/types"
)

func accepted(cmd types.CommandEnvelope) *types.CommandResult {
	return &types.CommandResult{CommandID: cmd.CommandID, Status: "accepted"}
}

func (a *Actor) handleCommand(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if cmd.RoomCode != "" && cmd.RoomCode != a.Code {
		return nil, fmt.Errorf("room mismatch: actor=%s command=%s", a.Code, cmd.RoomCode)
	}
	if a.state.Status == engine.StatusOngoing && a.state.Plan == nil {
		panic(fmt.Sprintf("room %s ongoing without a night plan", a.Code))
	}

	switch cmd.Type {
	case types.CmdTakeSeat:
		return a.handleTakeSeat(cmd)
	case types.CmdLeaveSeat:
		return a.handleLeaveSeat(cmd)
	case types.CmdViewRole:
		return a.handleViewRole(cmd)
	case types.CmdStartGame:
		return a.handleStartGame(cmd)
	case types.CmdSubmitAction:
		return a.handleSubmitAction(cmd)
	case types.CmdWolfVote:
		return a.handleWolfVote(cmd)
	case types.CmdAudioDone:
		return a.handleAudioDone(cmd)
	case types.CmdHello:
		return a.handleHello(cmd)
	case types.CmdRestart:
		return a.handleRestart(cmd)
	case types.CmdEndRoom:
		return a.handleEndRoom(cmd)
	case cmdWolfDeadline:
		return a.handleWolfDeadline(cmd)
	case cmdStepDeadline:
		return a.handleStepDeadline(cmd)
	case cmdResumeNight:
		return a.handleResumeNight(cmd)
	default:
		return nil, types.NewError(types.ErrBadRequest, fmt.Sprintf("unknown command type: %s", cmd.Type))
	}
}

// --- lobby ------------------------------------------------------------

func (a *Actor) handleTakeSeat(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	var p TakeSeatPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, types.WrapError(types.ErrBadRequest, "invalid take_seat payload", err)
	}
	if err := a.state.TakeSeat(cmd.ActorUID, p.Seat, p.DisplayName); err != nil {
		return nil, types.WrapError(types.ErrConflict, "cannot take seat", err)
	}
	a.broadcastState()
	a.trySnapshot()
	return accepted(cmd), nil
}

func (a *Actor) handleLeaveSeat(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if err := a.state.LeaveSeat(cmd.ActorUID); err != nil {
		return nil, types.WrapError(types.ErrConflict, "cannot leave seat", err)
	}
	a.broadcastState()
	a.trySnapshot()
	return accepted(cmd), nil
}

func (a *Actor) handleStartGame(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if cmd.ActorUID != a.state.HostUID {
		return nil, types.NewError(types.ErrForbidden, "only the host starts the game")
	}
	if a.state.Status == engine.StatusReady {
		// A restarted room keeps its roles; start_game just re-enters the
		// night.
		a.startNight()
		return accepted(cmd), nil
	}
	if err := a.state.AssignRoles(a.rng); err != nil {
		return nil, types.WrapError(types.ErrConflict, "cannot assign roles", err)
	}
	// Role cards are not parked for offline players: welcome.back carries
	// the role id directly.
	for _, p := range a.state.Players {
		a.sendTo(p.UID, a.envelope(types.MsgRoleAssignment,
			RoleAssignmentPayload{RoleID: p.Role, Seat: p.Seat}), false)
	}
	a.broadcastState()
	a.trySnapshot()
	return accepted(cmd), nil
}

func (a *Actor) handleViewRole(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if err := a.state.ViewRole(cmd.ActorUID); err != nil {
		return nil, types.WrapError(types.ErrConflict, "cannot view role", err)
	}
	a.broadcastState()
	a.trySnapshot()
	if a.state.Status == engine.StatusReady {
		// Everyone has seen their card; the night begins by itself.
		a.startNight()
	}
	return accepted(cmd), nil
}

// --- night orchestration ---------------------------------------------

func (a *Actor) startNight() {
	if err := a.state.StartNight(); err != nil {
		a.logger.Error("start night failed", zap.Error(err))
		return
	}
	a.ctrl.Start(len(a.state.Plan.Steps))
	a.deadlineSeq++
	a.broadcastState()
	a.sendCue(AudioCuePayload{Cue: types.CueNightBegin})
	a.trySnapshot()
}

func (a *Actor) handleAudioDone(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if cmd.ActorUID != a.state.HostUID {
		return nil, types.NewError(types.ErrForbidden, "audio callbacks come from the host")
	}
	var p AudioDonePayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, types.WrapError(types.ErrBadRequest, "invalid audio_done payload", err)
	}
	a.state.AudioPlaying = false

	switch p.Cue {
	case types.CueNightBegin:
		if a.ctrl.Apply(flow.EvNightBeginAudioDone) {
			a.afterStepAdvance()
		}
	case types.CueRoleBegin:
		if a.ctrl.Apply(flow.EvRoleBeginAudioDone) {
			a.enterWaiting()
		}
	case types.CueRoleEnd:
		if a.ctrl.Apply(flow.EvRoleEndAudioDone) {
			a.afterStepAdvance()
		}
	case types.CueNightEnd:
		if a.ctrl.Apply(flow.EvNightEndAudioDone) {
			a.endNight()
		}
	default:
		return nil, types.NewError(types.ErrBadRequest, fmt.Sprintf("unknown audio cue: %s", p.Cue))
	}
	// A stale or duplicated callback does not move the machine; the
	// controller already logged it.
	return accepted(cmd), nil
}

// afterStepAdvance runs when the controller has moved to a new step's
// begin-audio phase or to the night-end cue.
func (a *Actor) afterStepAdvance() {
	a.deadlineSeq++
	a.state.CurrentStep = a.ctrl.Step()
	a.broadcastState()
	a.trySnapshot()

	if a.ctrl.Phase() == flow.PhaseNightEndAudio {
		a.sendCue(AudioCuePayload{Cue: types.CueNightEnd, StepIndex: a.state.CurrentStep})
		return
	}
	step := a.state.CurrentNightStep()
	a.sendCue(AudioCuePayload{Cue: types.CueRoleBegin, RoleID: step.RoleID, StepIndex: a.state.CurrentStep})
}

// enterWaiting opens the current step for action submission: it announces
// the turn, hands role-specific context to the actors, arms deadlines, and
// skips steps nobody can act in.
func (a *Actor) enterWaiting() {
	a.deadlineSeq++
	step := a.state.CurrentNightStep()
	if step == nil {
		panic(fmt.Sprintf("room %s waiting with no current step", a.Code))
	}

	// A replayed step after recovery, or one whose actors are all dead or
	// nightmare-blocked, advances without a turn announcement.
	if _, done := a.state.Actions[step.RoleID]; done {
		a.logger.Debug("step already finalized, advancing", zap.String("role_id", string(step.RoleID)))
		a.finishStep(step.RoleID)
		return
	}
	if !a.stepHasLiveActor(step) {
		a.logger.Debug("no live actor for step, auto-skipping", zap.String("role_id", string(step.RoleID)))
		a.writeAction(step.RoleID, action.None())
		a.finishStep(step.RoleID)
		return
	}

	a.broadcast(a.envelope(types.MsgRoleTurn, RoleTurnPayload{
		RoleID: step.RoleID, StepIndex: a.state.CurrentStep}))

	switch {
	case step.RoleID == roles.Witch:
		a.sendWitchContext()
	case step.RoleID == roles.WolfMeetingID:
		if a.opts.WolfVoteTimeout > 0 {
			a.scheduleDeadline(cmdWolfDeadline, a.opts.WolfVoteTimeout, a.state.CurrentStep)
		}
	}
	if a.opts.StepTimeout > 0 && step.RoleID != roles.WolfMeetingID {
		a.scheduleDeadline(cmdStepDeadline, a.opts.StepTimeout, a.state.CurrentStep)
	}
}

// finishStep moves a finalized step into its end-audio phase.
func (a *Actor) finishStep(roleID roles.ID) {
	a.deadlineSeq++
	if !a.ctrl.Apply(flow.EvActionSubmitted) {
		a.ctrl.AdvancePastEmptyStep()
	}
	a.broadcastState()
	a.sendCue(AudioCuePayload{Cue: types.CueRoleEnd, RoleID: roleID, StepIndex: a.state.CurrentStep})
	a.trySnapshot()
}

func (a *Actor) endNight() {
	res := engine.ResolveNight(a.state)
	a.state.EndNight(res.Deaths, res.ProtectedSeat)
	deaths := res.Deaths
	if deaths == nil {
		deaths = []int{}
	}
	a.broadcast(a.envelope(types.MsgNightEnd, NightEndPayload{LastNightDeaths: deaths}))
	a.broadcastState()
	a.trySnapshot()
}

func (a *Actor) handleRestart(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if cmd.ActorUID != a.state.HostUID {
		return nil, types.NewError(types.ErrForbidden, "only the host restarts")
	}
	a.deadlineSeq++
	a.state.Restart()
	a.ctrl.Apply(flow.EvReset)
	a.pending = make(map[string][]types.Envelope)
	a.broadcastState()
	a.trySnapshot()
	return accepted(cmd), nil
}

func (a *Actor) handleEndRoom(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if cmd.ActorUID != a.state.HostUID {
		return nil, types.NewError(types.ErrForbidden, "only the host ends the room")
	}
	if a.onEnd != nil {
		go a.onEnd(a.Code)
	}
	return accepted(cmd), nil
}

// --- action ingress ---------------------------------------------------

// rejectAction notifies the submitter privately; the game state is
// untouched and the command itself still completes.
func (a *Actor) rejectAction(cmd types.CommandEnvelope, reason string) (*types.CommandResult, error) {
	if a.metrics != nil {
		a.metrics.CommandReject.WithLabelValues(reason).Inc()
	}
	a.sendTo(cmd.ActorUID, a.envelope(types.MsgActionRejected, ActionRejectedPayload{Reason: reason}), false)
	return &types.CommandResult{CommandID: cmd.CommandID, Status: "rejected", Reason: reason}, nil
}

func (a *Actor) handleSubmitAction(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	player := a.state.PlayerByUID(cmd.ActorUID)
	if player == nil {
		// Room-scope gate: not a seated participant, reject silently.
		a.logger.Debug("action from non-participant", zap.String("uid", cmd.ActorUID))
		return nil, types.NewError(types.ErrForbidden, "not seated in this room")
	}

	if a.state.Status != engine.StatusOngoing || a.ctrl.Phase() != flow.PhaseWaitingForAction {
		return a.rejectAction(cmd, types.RejectWrongPhase)
	}

	step := a.state.CurrentNightStep()
	var p SubmitActionPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, types.WrapError(types.ErrBadRequest, "invalid submit_action payload", err)
	}
	if step.RoleID == roles.WolfMeetingID || player.Role != step.RoleID || p.RoleID != step.RoleID {
		return a.rejectAction(cmd, types.RejectWrongRole)
	}
	if a.isBlocked(player.Seat) {
		// The nightmare voided this role tonight; the step auto-advances
		// on entry, so a straggling submission just disappears.
		a.logger.Debug("action from blocked seat dropped", zap.Int("seat", player.Seat))
		return accepted(cmd), nil
	}

	act, err := action.DecodeWire(step.Schema, p.Wire)
	if err != nil {
		return a.rejectAction(cmd, types.RejectIllegalTarget)
	}
	if reason := a.validateAction(player, step.Schema, &act); reason != "" {
		return a.rejectAction(cmd, reason)
	}

	if _, done := a.state.Actions[step.RoleID]; done {
		// Once-guard: the first write wins, later ones vanish quietly.
		a.logger.Debug("duplicate action dropped", zap.String("role_id", string(step.RoleID)))
		return accepted(cmd), nil
	}

	a.writeAction(step.RoleID, act)
	a.dispatchReveals(player, step.RoleID, act)
	a.finishStep(step.RoleID)
	return accepted(cmd), nil
}

func (a *Actor) writeAction(roleID roles.ID, act action.Action) {
	a.state.Actions[roleID] = act
	if a.metrics != nil {
		a.metrics.ActionAccepted.Inc()
	}
}

// validateAction applies the per-schema target rules. It may normalize the
// action (a witch save with no explicit seat locks onto the victim).
func (a *Actor) validateAction(player *engine.Player, schema roles.Schema, act *action.Action) string {
	spec := roles.Lookup(player.Role)
	switch schema {
	case roles.SchemaTarget:
		if act.Kind == action.KindNone {
			return ""
		}
		target := a.state.PlayerAt(act.Seat)
		if target == nil || !target.Alive {
			return types.RejectIllegalTarget
		}
		if act.Seat == player.Seat && !spec.Night1.AllowSelf {
			return types.RejectIllegalTarget
		}
		return ""

	case roles.SchemaMagicianSwap:
		first := a.state.PlayerAt(act.First)
		second := a.state.PlayerAt(act.Second)
		if first == nil || second == nil || !first.Alive || !second.Alive {
			return types.RejectIllegalTarget
		}
		return ""

	case roles.SchemaWitch:
		if act.Save {
			killed := a.rawWolfTarget()
			if killed == action.NoSeat {
				return types.RejectIllegalTarget
			}
			if act.Seat == action.NoSeat {
				act.Seat = killed
			}
			if act.Seat != killed {
				return types.RejectIllegalTarget
			}
			if killed == player.Seat && !spec.Flags.CanSaveSelf {
				return types.RejectIllegalTarget
			}
			return ""
		}
		if act.Poison {
			target := a.state.PlayerAt(act.Seat)
			if target == nil || !target.Alive {
				return types.RejectIllegalTarget
			}
		}
		return ""

	default:
		return types.RejectIllegalTarget
	}
}

// --- wolf meeting -----------------------------------------------------

func (a *Actor) handleWolfVote(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	player := a.state.PlayerByUID(cmd.ActorUID)
	if player == nil {
		a.logger.Debug("wolf vote from non-participant", zap.String("uid", cmd.ActorUID))
		return nil, types.NewError(types.ErrForbidden, "not seated in this room")
	}
	if a.state.Status != engine.StatusOngoing || a.ctrl.Phase() != flow.PhaseWaitingForAction {
		return a.rejectAction(cmd, types.RejectWrongPhase)
	}
	step := a.state.CurrentNightStep()
	if step.RoleID != roles.WolfMeetingID {
		return a.rejectAction(cmd, types.RejectWrongPhase)
	}
	if !player.Alive || !roles.Lookup(player.Role).WolfMeeting.ParticipatesInWolfVote {
		return a.rejectAction(cmd, types.RejectWrongRole)
	}
	if _, voted := a.state.WolfVotes[player.Seat]; voted {
		// One vote per wolf seat.
		return a.rejectAction(cmd, types.RejectDuplicate)
	}

	var p WolfVotePayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, types.WrapError(types.ErrBadRequest, "invalid wolf_vote payload", err)
	}
	target := action.NoSeat
	if p.TargetSeat != nil && *p.TargetSeat != action.NoSeat {
		target = *p.TargetSeat
		tp := a.state.PlayerAt(target)
		if tp == nil || !tp.Alive {
			return a.rejectAction(cmd, types.RejectIllegalTarget)
		}
		if roles.Lookup(tp.Role).Flags.ImmuneToWolfKill {
			return a.rejectAction(cmd, types.RejectIllegalTarget)
		}
	}

	a.state.WolfVotes[player.Seat] = target
	if a.wolfQuorumReached() {
		a.finalizeWolfVote()
	}
	return accepted(cmd), nil
}

// wolfQuorumReached is true once every live, unblocked meeting seat voted.
func (a *Actor) wolfQuorumReached() bool {
	for _, seat := range a.state.LiveWolfMeetingSeats() {
		if a.isBlocked(seat) {
			continue
		}
		if _, ok := a.state.WolfVotes[seat]; !ok {
			return false
		}
	}
	return true
}

// finalizeWolfVote settles the meeting: plurality wins, ties break to the
// lowest seat index, an abstain majority or an empty meeting means a
// peaceful night. Guarded like any other action write.
func (a *Actor) finalizeWolfVote() {
	if _, done := a.state.Actions[roles.WolfMeetingID]; done {
		a.logger.Debug("wolf vote already finalized")
		return
	}

	counts := make(map[int]int)
	for _, target := range a.state.WolfVotes {
		counts[target]++
	}
	winner := action.NoSeat
	best := 0
	seats := make([]int, 0, len(counts))
	for seat := range counts {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		if seat == action.NoSeat {
			continue
		}
		if counts[seat] > best {
			best = counts[seat]
			winner = seat
		}
	}
	if abstains := counts[action.NoSeat]; abstains > best {
		winner = action.NoSeat
	}

	a.writeAction(roles.WolfMeetingID, action.Action{Kind: action.KindTarget, Seat: winner})
	a.logger.Info("wolf vote finalized",
		zap.Int("target_seat", winner),
		zap.Int("votes", len(a.state.WolfVotes)))
	a.finishStep(roles.WolfMeetingID)
}

func (a *Actor) handleWolfDeadline(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	var p deadlinePayload
	_ = json.Unmarshal(cmd.Payload, &p)
	if p.Seq != a.deadlineSeq || a.ctrl.Phase() != flow.PhaseWaitingForAction {
		a.logger.Debug("stale wolf deadline ignored", zap.Int("seq", p.Seq))
		return accepted(cmd), nil
	}
	if step := a.state.CurrentNightStep(); step == nil || step.RoleID != roles.WolfMeetingID {
		a.logger.Debug("wolf deadline outside wolf step ignored")
		return accepted(cmd), nil
	}
	a.logger.Info("wolf vote deadline reached", zap.Int("votes", len(a.state.WolfVotes)))
	a.finalizeWolfVote()
	return accepted(cmd), nil
}

func (a *Actor) handleStepDeadline(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	var p deadlinePayload
	_ = json.Unmarshal(cmd.Payload, &p)
	if p.Seq != a.deadlineSeq || a.ctrl.Phase() != flow.PhaseWaitingForAction {
		a.logger.Debug("stale step deadline ignored", zap.Int("seq", p.Seq))
		return accepted(cmd), nil
	}
	step := a.state.CurrentNightStep()
	if step == nil || step.RoleID == roles.WolfMeetingID {
		return accepted(cmd), nil
	}
	if _, done := a.state.Actions[step.RoleID]; done {
		return accepted(cmd), nil
	}
	a.logger.Info("step deadline reached, auto-skipping", zap.String("role_id", string(step.RoleID)))
	a.writeAction(step.RoleID, action.None())
	a.finishStep(step.RoleID)
	return accepted(cmd), nil
}

// handleResumeNight replays the pending cue after a recovery: the room
// state is authoritative, only the audio gate needs re-arming.
func (a *Actor) handleResumeNight(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	if a.state.Status != engine.StatusOngoing {
		return accepted(cmd), nil
	}
	a.broadcastState()
	switch a.ctrl.Phase() {
	case flow.PhaseRoleBeginAudio:
		step := a.state.CurrentNightStep()
		a.sendCue(AudioCuePayload{Cue: types.CueRoleBegin, RoleID: step.RoleID, StepIndex: a.state.CurrentStep})
	case flow.PhaseNightEndAudio:
		a.sendCue(AudioCuePayload{Cue: types.CueNightEnd, StepIndex: a.state.CurrentStep})
	}
	return accepted(cmd), nil
}

// --- reveals ----------------------------------------------------------

// dispatchReveals sends the private information a submission produces.
// Reveals always land before the role's end-audio callback can advance
// the night, because both happen on this goroutine in this order.
func (a *Actor) dispatchReveals(player *engine.Player, roleID roles.ID, act action.Action) {
	if act.Kind != action.KindTarget || act.Seat == action.NoSeat {
		return
	}
	effective := engine.EffectiveTargetSeat(a.state, roleID, act.Seat)
	switch roleID {
	case roles.Seer:
		result := roles.SeerCheckResult(a.state.RoleAt(effective))
		a.sendTo(player.UID, a.envelope(types.MsgSeerReveal,
			SeerRevealPayload{TargetSeat: act.Seat, Result: result}), true)
	case roles.Psychic:
		a.sendTo(player.UID, a.envelope(types.MsgPsychicReveal,
			NameRevealPayload{TargetSeat: act.Seat, DisplayName: roles.DisplayName(a.state.RoleAt(effective))}), true)
	case roles.Gargoyle:
		a.sendTo(player.UID, a.envelope(types.MsgGargoyleReveal,
			NameRevealPayload{TargetSeat: act.Seat, DisplayName: roles.DisplayName(a.state.RoleAt(effective))}), true)
	}
}

// sendWitchContext shows the witch the raw wolf target as she wakes.
func (a *Actor) sendWitchContext() {
	killed := a.rawWolfTarget()
	for _, seat := range a.state.SeatsWithRole(roles.Witch) {
		witch := a.state.PlayerAt(seat)
		if witch == nil || !witch.Alive {
			continue
		}
		canSave := killed != action.NoSeat
		if killed == seat && !roles.Lookup(roles.Witch).Flags.CanSaveSelf {
			canSave = false
		}
		a.sendTo(witch.UID, a.envelope(types.MsgWitchContext,
			WitchContextPayload{KilledIndex: killed, CanSave: canSave}), true)
	}
}

func (a *Actor) rawWolfTarget() int {
	if act, ok := a.state.Actions[roles.WolfMeetingID]; ok && act.Kind == action.KindTarget {
		return act.Seat
	}
	return action.NoSeat
}

// --- rejoin -----------------------------------------------------------

func (a *Actor) handleHello(cmd types.CommandEnvelope) (*types.CommandResult, error) {
	payload := WelcomeBackPayload{State: a.state.Public()}
	if player := a.state.PlayerByUID(cmd.ActorUID); player != nil {
		payload.RoleID = player.Role
		payload.HasViewedRole = player.HasViewedRole
	}
	if parked := a.pending[cmd.ActorUID]; len(parked) > 0 {
		payload.PendingReveals = parked
		delete(a.pending, cmd.ActorUID)
		if a.metrics != nil {
			a.metrics.ResyncMessages.Add(float64(len(parked)))
		}
	}
	if a.state.Status == engine.StatusOngoing {
		if step := a.state.CurrentNightStep(); step != nil {
			payload.RoleTurn = &RoleTurnPayload{RoleID: step.RoleID, StepIndex: a.state.CurrentStep}
		}
	}
	a.sendTo(cmd.ActorUID, a.envelope(types.MsgWelcomeBack, payload), false)
	return accepted(cmd), nil
}

// --- shared bits ------------------------------------------------------

// sendCue asks the host device to play one audio cue; the room tracks
// that a cue is in flight.
func (a *Actor) sendCue(p AudioCuePayload) {
	a.state.AudioPlaying = true
	a.sendToHost(a.envelope(types.MsgAudioCue, p))
}

func (a *Actor) broadcastState() {
	a.cacheView()
	a.broadcast(a.envelope(types.MsgStateUpdate, a.state.Public()))
}

// stepHasLiveActor reports whether anyone can still act in the step.
func (a *Actor) stepHasLiveActor(step *night.Step) bool {
	for _, seat := range step.ActorSeats {
		p := a.state.PlayerAt(seat)
		if p == nil || !p.Alive {
			continue
		}
		if a.isBlocked(seat) {
			continue
		}
		return true
	}
	return false
}

// isBlocked reports whether the nightmare voided this seat's action.
func (a *Actor) isBlocked(seat int) bool {
	act, ok := a.state.Actions[roles.Nightmare]
	if !ok || act.Kind != action.KindTarget || act.Seat == action.NoSeat {
		return false
	}
	return engine.EffectiveTargetSeat(a.state, roles.Nightmare, act.Seat) == seat
}
