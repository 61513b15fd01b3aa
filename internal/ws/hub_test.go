package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/types"
)

type fakeConn struct {
	mu     sync.Mutex
	writes []Message
	fail   bool
	closed bool
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection gone")
	}
	msg, ok := v.(Message)
	if !ok {
		return errors.New("unexpected payload type")
	}
	f.writes = append(f.writes, msg)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.writes))
	copy(out, f.writes)
	return out
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewHub(log)
}

func TestBroadcastFanOut(t *testing.T) {
	hub := newTestHub(t)

	conns := []*fakeConn{{}, {}, {}}
	for _, conn := range conns {
		hub.Register(hub.NewClient(conn))
	}
	if hub.ClientCount() != 3 {
		t.Fatalf("ClientCount = %d, want 3", hub.ClientCount())
	}

	node := &types.NodeView{ID: 7, TreeID: 3, Result: 52}
	hub.BroadcastOperationAdded(3, node)

	for i, conn := range conns {
		msgs := conn.messages()
		if len(msgs) != 1 {
			t.Fatalf("conn %d received %d messages, want 1", i, len(msgs))
		}
		if msgs[0].Type != EventOperationAdded {
			t.Fatalf("conn %d type = %q", i, msgs[0].Type)
		}
		payload, ok := msgs[0].Data.(OperationAddedPayload)
		if !ok {
			t.Fatalf("conn %d payload type = %T", i, msgs[0].Data)
		}
		if payload.TreeID != 3 || payload.Node != node {
			t.Fatalf("conn %d payload = %+v", i, payload)
		}
	}
}

// Delivery is best effort: one dead connection must not affect the others,
// and the dead client is dropped from the registry.
func TestBroadcastSkipsFailedConn(t *testing.T) {
	hub := newTestHub(t)

	healthy1 := &fakeConn{}
	dead := &fakeConn{fail: true}
	healthy2 := &fakeConn{}
	for _, conn := range []*fakeConn{healthy1, dead, healthy2} {
		hub.Register(hub.NewClient(conn))
	}

	tree := &types.TreeView{ID: 1, StartingNumber: 42}
	hub.BroadcastTreeCreated(tree)

	if len(healthy1.messages()) != 1 || len(healthy2.messages()) != 1 {
		t.Fatalf("healthy conns received %d and %d messages, want 1 each",
			len(healthy1.messages()), len(healthy2.messages()))
	}
	if hub.ClientCount() != 2 {
		t.Fatalf("ClientCount = %d, want 2 after dropping the dead client", hub.ClientCount())
	}
	if !dead.closed {
		t.Fatal("dead connection was not closed")
	}

	// Later broadcasts keep flowing to the survivors.
	hub.BroadcastTreeCreated(tree)
	if len(healthy1.messages()) != 2 || len(healthy2.messages()) != 2 {
		t.Fatal("survivors stopped receiving broadcasts")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	client := hub.NewClient(conn)
	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Fatalf("ClientCount = %d, want 0", hub.ClientCount())
	}

	hub.BroadcastTreeCreated(&types.TreeView{ID: 1})
	if len(conn.messages()) != 0 {
		t.Fatal("unregistered client received a broadcast")
	}
}

func TestSubscribeHandshake(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	client := hub.NewClient(conn)
	hub.Register(client)

	hub.HandleInbound(client, Message{Type: EventSubscribe})
	msgs := conn.messages()
	if len(msgs) != 1 || msgs[0].Type != EventSubscribed {
		t.Fatalf("handshake reply = %+v", msgs)
	}

	// Anything other than subscribe is ignored.
	hub.HandleInbound(client, Message{Type: "ping"})
	if len(conn.messages()) != 1 {
		t.Fatal("unknown inbound message produced a reply")
	}
}

// Eligibility begins at registration: a client that never sent the
// subscribe handshake still receives broadcasts.
func TestBroadcastBeforeHandshake(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	hub.Register(hub.NewClient(conn))
	hub.BroadcastTreeCreated(&types.TreeView{ID: 9})

	msgs := conn.messages()
	if len(msgs) != 1 || msgs[0].Type != EventTreeCreated {
		t.Fatalf("messages = %+v", msgs)
	}
}

func TestConcurrentRegisterDuringBroadcast(t *testing.T) {
	hub := newTestHub(t)
	for i := 0; i < 10; i++ {
		hub.Register(hub.NewClient(&fakeConn{}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.BroadcastTreeCreated(&types.TreeView{ID: 1})
		}()
		go func() {
			defer wg.Done()
			client := hub.NewClient(&fakeConn{})
			hub.Register(client)
			hub.Unregister(client)
		}()
	}
	wg.Wait()
}
