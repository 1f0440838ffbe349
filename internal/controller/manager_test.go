package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const testControlTopic = "switchboard/test/control"

// fakeSleep records requested delays without actually sleeping.
type fakeSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (f *fakeSleep) sleep(_ context.Context, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
}

func (f *fakeSleep) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delays)
}

// newTestManager wires a manager over the fake transport with a fixed
// two-second policy and stubbed sleep.
func newTestManager(t *testing.T) (*Manager, *fakeTransport, *fakeSleep) {
	t.Helper()
	reg, pub, transport := newTestRig(256)
	transport.connected = false

	proc := NewProcessor(reg, pub)
	m := NewManager(transport, proc, pub, testControlTopic, NewFixedDelay(2*time.Second))

	sleeper := &fakeSleep{}
	m.sleep = sleeper.sleep
	return m, transport, sleeper
}

// waitPublish waits for the next publish on the fake transport.
func waitPublish(t *testing.T, transport *fakeTransport) fakePublish {
	t.Helper()
	select {
	case pub := <-transport.publishCh:
		return pub
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
		return fakePublish{}
	}
}

func assertNoPublish(t *testing.T, transport *fakeTransport) {
	t.Helper()
	select {
	case pub := <-transport.publishCh:
		t.Fatalf("unexpected publish: %+v", pub)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRun_AnnouncesSnapshotOnConnect(t *testing.T) {
	m, transport, sleeper := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// Fresh connection announces current (all-off) state, retained.
	pub := waitPublish(t, transport)
	if pub.topic != "switchboard/test/state" {
		t.Errorf("announce topic = %q, want state topic", pub.topic)
	}
	if !pub.retained {
		t.Error("announce retained = false, want true")
	}
	if want := `{"d0":"off","d1":"off","d2":"off"}`; pub.payload != want {
		t.Errorf("announce payload = %s, want %s", pub.payload, want)
	}
	if sleeper.count() != 0 {
		t.Errorf("sleep called %d times for a clean connect, want 0", sleeper.count())
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestRun_RetriesWithPolicyDelay(t *testing.T) {
	m, transport, sleeper := newTestManager(t)
	transport.connectFails = 3

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx) //nolint:errcheck // exits via cancel

	waitPublish(t, transport) // connect eventually succeeded

	transport.mu.Lock()
	connects := transport.connects
	transport.mu.Unlock()
	if connects != 4 {
		t.Errorf("connect attempts = %d, want 4 (3 failures + success)", connects)
	}

	sleeper.mu.Lock()
	defer sleeper.mu.Unlock()
	if len(sleeper.delays) != 3 {
		t.Fatalf("retry sleeps = %d, want 3", len(sleeper.delays))
	}
	for i, d := range sleeper.delays {
		if d != 2*time.Second {
			t.Errorf("delay[%d] = %v, want 2s (fixed policy)", i, d)
		}
	}
}

func TestRun_ReconnectRepublishesUnchangedState(t *testing.T) {
	m, transport, _ := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx) //nolint:errcheck // exits via cancel

	first := waitPublish(t, transport)

	// Drop the link with no intervening command.
	transport.dropLink()

	// Exactly one snapshot publish occurs on reconnection, and it reflects
	// the unchanged state.
	second := waitPublish(t, transport)
	if second.payload != first.payload {
		t.Errorf("reconnect announce = %s, want unchanged %s", second.payload, first.payload)
	}
	assertNoPublish(t, transport)

	// The control topic was re-subscribed for the new session.
	if !transport.deliver(testControlTopic, []byte(`{"d0":"on"}`)) {
		t.Fatal("control topic not re-subscribed after reconnect")
	}
	third := waitPublish(t, transport)
	if want := `{"d0":"on","d1":"off","d2":"off"}`; third.payload != want {
		t.Errorf("post-reconnect command snapshot = %s, want %s", third.payload, want)
	}
}

func TestRun_ServicesCommands(t *testing.T) {
	m, transport, _ := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx) //nolint:errcheck // exits via cancel

	waitPublish(t, transport) // boot announce

	if !transport.deliver(testControlTopic, []byte(`{"d1":"on"}`)) {
		t.Fatal("control topic not subscribed")
	}
	pub := waitPublish(t, transport)
	if want := `{"d0":"off","d1":"on","d2":"off"}`; pub.payload != want {
		t.Errorf("command snapshot = %s, want %s", pub.payload, want)
	}

	// A malformed command is dropped without a publish.
	transport.deliver(testControlTopic, []byte(`{broken`))
	assertNoPublish(t, transport)

	// And the loop keeps servicing afterwards.
	transport.deliver(testControlTopic, []byte(`{"d1":"off"}`))
	pub = waitPublish(t, transport)
	if want := `{"d0":"off","d1":"off","d2":"off"}`; pub.payload != want {
		t.Errorf("follow-up snapshot = %s, want %s", pub.payload, want)
	}
}

func TestRun_SubscribeFailureRetries(t *testing.T) {
	m, transport, sleeper := newTestManager(t)
	transport.subscribeErr = errors.New("not authorised")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx) //nolint:errcheck // exits via cancel

	// A session without the control subscription is torn down and retried,
	// and no announce happens for it.
	deadline := time.After(2 * time.Second)
	for sleeper.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("manager did not retry after subscribe failure")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if n := transport.publishCount(); n != 0 {
		t.Errorf("publish count = %d, want 0 while subscribe keeps failing", n)
	}
}

func TestRun_CancelDuringRetryLoop(t *testing.T) {
	m, transport, _ := newTestManager(t)
	transport.connectFails = 1 << 30 // never succeeds

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not exit after cancellation")
	}
}

func TestFixedDelay(t *testing.T) {
	policy := NewFixedDelay(5 * time.Second)

	for i := 0; i < 3; i++ {
		if d := policy.Next(); d != 5*time.Second {
			t.Errorf("Next() = %v, want 5s", d)
		}
	}
	policy.Reset()
	if d := policy.Next(); d != 5*time.Second {
		t.Errorf("Next() after Reset() = %v, want 5s", d)
	}
}

func TestExponentialBackoff(t *testing.T) {
	policy := NewExponentialBackoff(time.Second, 8*time.Second)

	// Jitter is +/-20%, so check bands around 1s, 2s, 4s, 8s, 8s.
	wants := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
	for i, want := range wants {
		got := policy.Next()
		lo := time.Duration(float64(want) * (1 - jitterFraction))
		hi := time.Duration(float64(want) * (1 + jitterFraction))
		if got < lo || got > hi {
			t.Errorf("Next()[%d] = %v, want within [%v, %v]", i, got, lo, hi)
		}
	}

	// Reset returns to the initial delay band.
	policy.Reset()
	got := policy.Next()
	lo := time.Duration(float64(time.Second) * (1 - jitterFraction))
	hi := time.Duration(float64(time.Second) * (1 + jitterFraction))
	if got < lo || got > hi {
		t.Errorf("Next() after Reset() = %v, want within [%v, %v]", got, lo, hi)
	}
}
