package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const defaultBufferSize = 32

// Subscription - подписка на изменения отчетов
type Subscription struct {
	id     uint64
	userID *uuid.UUID
	events chan Event
	hub    *Hub
	once   sync.Once
}

// Events возвращает канал событий. Канал закрывается при отмене подписки.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close отменяет подписку
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s.id)
	})
}

func (s *Subscription) matches(e Event) bool {
	if s.userID == nil {
		return true
	}
	return e.Report != nil && e.Report.UserID == *s.userID
}

// Hub рассылает события подписчикам внутри процесса.
// Медленный подписчик никогда не блокирует публикацию: событие для него отбрасывается.
type Hub struct {
	mu         sync.RWMutex
	subs       map[uint64]*Subscription
	nextID     uint64
	bufferSize int
	onChange   func(subscribers int)
}

// NewHub создает хаб. onChange вызывается при изменении числа подписчиков и может быть nil.
func NewHub(bufferSize int, onChange func(subscribers int)) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
		onChange:   onChange,
	}
}

// Subscribe подписывает на все события или, если userID задан, только на события отчетов этого пользователя
func (h *Hub) Subscribe(userID *uuid.UUID) *Subscription {
	h.mu.Lock()
	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		userID: userID,
		events: make(chan Event, h.bufferSize),
		hub:    h,
	}
	h.subs[sub.id] = sub
	n := len(h.subs)
	h.mu.Unlock()

	h.notify(n)
	return sub
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(sub.events)
	}
	n := len(h.subs)
	h.mu.Unlock()

	if ok {
		h.notify(n)
	}
}

// Broadcast доставляет событие подходящим подписчикам и возвращает число доставок
func (h *Hub) Broadcast(e Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, sub := range h.subs {
		if !sub.matches(e) {
			continue
		}
		select {
		case sub.events <- e:
			delivered++
		default:
		}
	}
	return delivered
}

// Publish реализует публикацию без внешней шины, для одного экземпляра сервиса
func (h *Hub) Publish(_ context.Context, e Event) error {
	h.Broadcast(e)
	return nil
}

// SubscriberCount возвращает текущее число подписчиков
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close отменяет все подписки
func (h *Hub) Close() {
	h.mu.Lock()
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.events)
	}
	h.mu.Unlock()
	h.notify(0)
}

func (h *Hub) notify(n int) {
	if h.onChange != nil {
		h.onChange(n)
	}
}
