package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestBroadcastReachesTCPClient(t *testing.T) {
	hub := NewHub()
	server, client := net.Pipe()
	defer client.Close()
	hub.Add(server)

	got := make(chan FavoriteEvent, 1)
	go func() {
		sc := bufio.NewScanner(client)
		for sc.Scan() {
			var ev FavoriteEvent
			if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
				continue
			}
			if ev.Type != "" {
				got <- ev
				return
			}
		}
	}()

	hub.BroadcastJSON(FavoriteEvent{
		Type:    "favorite.update",
		UserID:  "u1",
		EventID: "tm_1",
		At:      time.Now().UTC(),
	})

	select {
	case ev := <-got:
		if ev.Type != "favorite.update" || ev.EventID != "tm_1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestDeadClientIsDropped(t *testing.T) {
	hub := NewHub()
	server, client := net.Pipe()
	hub.Add(server)
	_ = client.Close()

	// the write deadline expires against the closed pipe and the client is
	// evicted
	hub.BroadcastJSON(FavoriteEvent{Type: "favorite.delete", EventID: "tm_1"})

	if n := hub.Count(); n != 0 {
		t.Fatalf("expected dead client to be dropped, still %d clients", n)
	}
}

func TestStats(t *testing.T) {
	hub := NewHub()
	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()
	hub.Add(server)

	s := hub.Stats()
	if s.TCPClients != 1 || s.WSClients != 0 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	hub.Remove(server)
	if hub.Count() != 0 {
		t.Fatal("remove should drop the client")
	}
}
