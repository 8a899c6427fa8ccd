package swap

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"swapdesk/pkg/client"
	"swapdesk/pkg/types"
)

func TestPollReachesTerminal(t *testing.T) {
	var calls int32
	provider := &fakeProvider{
		statusFn: func(ctx context.Context, id string) (*types.Exchange, error) {
			switch atomic.AddInt32(&calls, 1) {
			case 1:
				return &types.Exchange{ID: id, Status: types.StatusWaiting}, nil
			case 2:
				return &types.Exchange{ID: id, Status: types.StatusExchanging}, nil
			default:
				return &types.Exchange{ID: id, Status: types.StatusFinished}, nil
			}
		},
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	if _, err := session.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	waitFor(t, "terminal phase", func() bool {
		return session.Snapshot().Phase == PhaseTerminal
	})

	snap := session.Snapshot()
	if snap.Exchange.Status != types.StatusFinished {
		t.Fatalf("final status = %s want finished", snap.Exchange.Status)
	}
}

// Transient poll failures keep the last snapshot and keep polling;
// only a terminal status or cancellation stops the poller.
func TestPollSurvivesTransientFailures(t *testing.T) {
	var calls int32
	provider := &fakeProvider{
		statusFn: func(ctx context.Context, id string) (*types.Exchange, error) {
			switch atomic.AddInt32(&calls, 1) {
			case 1:
				return &types.Exchange{ID: id, Status: types.StatusConfirming}, nil
			case 2, 3:
				return nil, client.ErrTransient
			default:
				return &types.Exchange{ID: id, Status: types.StatusFinished}, nil
			}
		},
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	if _, err := session.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	waitFor(t, "poll to survive failures", func() bool {
		snap := session.Snapshot()
		return snap.Exchange.Status == types.StatusConfirming
	})

	waitFor(t, "terminal phase after failures", func() bool {
		return session.Snapshot().Phase == PhaseTerminal
	})
	if snap := session.Snapshot(); snap.Exchange.Status != types.StatusFinished {
		t.Fatalf("final status = %s want finished", snap.Exchange.Status)
	}
}

// A resubmission abandons the previous poller; a late result for the
// abandoned exchange must not overwrite the new one.
func TestAbandonedPollerDoesNotClobber(t *testing.T) {
	releaseFirst := make(chan struct{})
	provider := &fakeProvider{}
	ids := []string{"ex-1", "ex-2"}
	provider.createFn = func(ctx context.Context, req types.SwapRequest) (*types.Exchange, error) {
		return &types.Exchange{ID: ids[provider.creates()-1], Status: types.StatusWaiting}, nil
	}
	provider.statusFn = func(ctx context.Context, id string) (*types.Exchange, error) {
		if id == "ex-1" {
			<-releaseFirst
			return &types.Exchange{ID: "ex-1", Status: types.StatusFinished}, nil
		}
		return &types.Exchange{ID: "ex-2", Status: types.StatusExchanging}, nil
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	if _, err := session.Submit(); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := session.Submit(); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	close(releaseFirst)

	waitFor(t, "second exchange to be polled", func() bool {
		snap := session.Snapshot()
		return snap.Exchange.Status == types.StatusExchanging
	})

	// Give the abandoned poller time to misbehave
	time.Sleep(50 * time.Millisecond)

	snap := session.Snapshot()
	if snap.Exchange.ID != "ex-2" {
		t.Fatalf("session tracks %s want ex-2", snap.Exchange.ID)
	}
	if snap.Phase == PhaseTerminal {
		t.Fatal("abandoned exchange drove the session terminal")
	}
}

func TestCloseStopsPolling(t *testing.T) {
	var calls int32
	provider := &fakeProvider{
		statusFn: func(ctx context.Context, id string) (*types.Exchange, error) {
			atomic.AddInt32(&calls, 1)
			return &types.Exchange{ID: id, Status: types.StatusWaiting}, nil
		},
	}
	session := newTestSession(t, provider)

	fillValidForm(session)
	if _, err := session.Submit(); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	waitFor(t, "first poll", func() bool {
		return atomic.LoadInt32(&calls) > 0
	})

	session.Close()

	settled := atomic.LoadInt32(&calls)
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != settled {
		t.Fatalf("poller still running after Close: %d -> %d calls", settled, got)
	}
}
