package bus

import (
	"context"
	"testing"

	"github.com/moxuan/werewolf-judge/internal/types"
)

func TestInprocBusRecordsInOrder(t *testing.T) {
	ctx := context.Background()
	b := NewInprocBus()
	if err := b.EnsureRoom(ctx, "1234"); err != nil {
		t.Fatal(err)
	}

	b.Broadcast(ctx, "1234", types.Envelope{Type: types.MsgStateUpdate})
	b.SendToUser(ctx, "1234", "alice", types.Envelope{Type: types.MsgSeerReveal})
	b.SendToHost(ctx, "1234", types.Envelope{Type: types.MsgAudioCue})

	msgs := b.Messages("1234")
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Type != types.MsgStateUpdate || msgs[1].Type != types.MsgSeerReveal || msgs[2].Type != types.MsgAudioCue {
		t.Fatalf("order lost: %v", msgs)
	}

	private := b.MessagesTo("1234", "alice")
	if len(private) != 1 || private[0].Type != types.MsgSeerReveal {
		t.Fatalf("private filter broken: %v", private)
	}

	if err := b.ReleaseRoom(ctx, "1234"); err != nil {
		t.Fatal(err)
	}
	if got := b.Messages("1234"); len(got) != 0 {
		t.Fatalf("released room should be empty, got %v", got)
	}
}
