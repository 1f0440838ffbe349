package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/nerrad567/switchboard/internal/channel"
)

// fakePublish records one Publish call on the fake transport.
type fakePublish struct {
	topic    string
	payload  string
	retained bool
}

// fakeTransport is an in-memory Transport for tests.
//
// Connect can be scripted to fail a number of times before succeeding.
// Published messages are recorded and also signalled on publishCh so tests
// can wait for them without polling.
type fakeTransport struct {
	mu           sync.Mutex
	connected    bool
	connectFails int
	connects     int
	subscribeErr error
	publishErr   error
	handlers     map[string]MessageHandler
	publishes    []fakePublish
	onDisconnect func(err error)

	publishCh chan fakePublish
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		handlers:  make(map[string]MessageHandler),
		publishCh: make(chan fakePublish, 32),
	}
}

func (f *fakeTransport) Connect(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectFails > 0 {
		f.connectFails--
		return errors.New("connection refused")
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) Subscribe(topic string, handler MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeTransport) Publish(topic string, payload []byte, retained bool) error {
	f.mu.Lock()
	if f.publishErr != nil {
		err := f.publishErr
		f.mu.Unlock()
		return err
	}
	pub := fakePublish{topic: topic, payload: string(payload), retained: retained}
	f.publishes = append(f.publishes, pub)
	f.mu.Unlock()

	f.publishCh <- pub
	return nil
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) SetOnDisconnect(fn func(err error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDisconnect = fn
}

// deliver feeds a message to the handler subscribed on topic.
func (f *fakeTransport) deliver(topic string, payload []byte) bool {
	f.mu.Lock()
	handler, ok := f.handlers[topic]
	f.mu.Unlock()
	if !ok {
		return false
	}
	handler(topic, payload)
	return true
}

// dropLink simulates the broker connection being lost.
func (f *fakeTransport) dropLink() {
	f.mu.Lock()
	f.connected = false
	f.handlers = make(map[string]MessageHandler)
	fn := f.onDisconnect
	f.mu.Unlock()
	if fn != nil {
		fn(errors.New("link lost"))
	}
}

func (f *fakeTransport) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.publishes)
}

func (f *fakeTransport) lastPublish() (fakePublish, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.publishes) == 0 {
		return fakePublish{}, false
	}
	return f.publishes[len(f.publishes)-1], true
}

// newTestRig builds a registry on a memory driver plus a publisher over the
// fake transport, with the standard three-channel test table.
func newTestRig(maxBytes int) (*channel.Registry, *Publisher, *fakeTransport) {
	driver := channel.NewMemoryDriver()
	reg, err := channel.New(driver, []channel.Definition{
		{Name: "d0", Pin: 16},
		{Name: "d1", Pin: 5},
		{Name: "d2", Pin: 4},
	})
	if err != nil {
		panic(err)
	}
	if err := reg.Initialize(); err != nil {
		panic(err)
	}

	transport := newFakeTransport()
	transport.connected = true
	pub := NewPublisher(reg, transport, "switchboard/test/state", maxBytes)
	return reg, pub, transport
}
