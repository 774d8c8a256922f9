package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()

	select {
	case event := <-ch:
		return event
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
	return Event{}
}

// TestHubBroadcastTimestamp проверяет доставку события и проставленное время.
func TestHubBroadcastTimestamp(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	hub.Broadcast(Event{Type: "test"})

	event := receive(t, ch)
	if event.Type != "test" {
		t.Fatalf("expected event type test, got %s", event.Type)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}

// TestHubSubscriberCountPerUser проверяет подсчет нескольких вкладок одного пользователя.
func TestHubSubscriberCountPerUser(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	_, first := hub.Subscribe(userID)
	_, second := hub.Subscribe(userID)
	if hub.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", hub.SubscriberCount())
	}

	first()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}
	second()
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.SubscriberCount())
	}
}

// TestHubBroadcast проверяет рассылку события всем пользователям.
func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	first, unsubscribeFirst := hub.Subscribe(uuid.New())
	defer unsubscribeFirst()
	second, unsubscribeSecond := hub.Subscribe(uuid.New())
	defer unsubscribeSecond()

	if hub.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", hub.SubscriberCount())
	}

	hub.Broadcast(Event{Type: "signal_updated", Data: map[string]interface{}{"risk_count": 2}})

	for _, ch := range []<-chan Event{first, second} {
		event := receive(t, ch)
		if event.Type != "signal_updated" {
			t.Fatalf("expected signal_updated, got %s", event.Type)
		}
	}
}

// TestHubBroadcastDropsWhenFull проверяет, что переполненный подписчик не блокирует рассылку.
func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Broadcast(Event{Type: "tick"})
	}

	if len(ch) != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.SubscriberCount())
	}
}
