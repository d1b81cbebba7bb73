package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sliink/formatbridge/internal/model"
)

// DefaultSubscriptionBuffer is the capacity of a subscription's outbound
// channel when none is configured.
const DefaultSubscriptionBuffer = 64

// EventBus is an in-memory multi-topic publish/subscribe log. Each topic is
// an append-only sequence of messages with gap-free 0-based offsets, kept
// for the life of the process. Topics are created implicitly on first
// publish or subscribe and never deleted.
//
// Streaming delivery goes through one pump goroutine per subscription that
// reads the topic log from a cursor, so a late joiner replays every
// historical message in offset order and then follows live publishes with
// no gap and no duplicate, regardless of how far behind it falls.
type EventBus struct {
	mu      sync.RWMutex
	topics  map[string]*topicLog
	bufSize int
	logger  zerolog.Logger
}

type topicLog struct {
	messages []model.Message
	subs     map[string]*Subscription
}

// Subscription is one live consumer of a topic. Messages arrive on C in
// offset order; the channel is closed after Close or when the bus drops the
// subscription. Close is safe to call more than once and from any goroutine.
type Subscription struct {
	ID    string
	Topic string
	C     <-chan model.Message

	ch        chan model.Message
	done      chan struct{}
	notify    chan struct{}
	closeOnce sync.Once
}

// Close cancels the subscription and removes it from the topic's live set.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// NewEventBus creates a bus whose subscriptions buffer up to bufSize
// undelivered messages before the pump blocks.
func NewEventBus(bufSize int, logger zerolog.Logger) *EventBus {
	if bufSize <= 0 {
		bufSize = DefaultSubscriptionBuffer
	}
	return &EventBus{
		topics:  make(map[string]*topicLog),
		bufSize: bufSize,
		logger:  logger.With().Str("component", "bus").Logger(),
	}
}

// topic returns the named topic, creating it if absent. Callers hold b.mu.
func (b *EventBus) topic(name string) *topicLog {
	t, ok := b.topics[name]
	if !ok {
		t = &topicLog{subs: make(map[string]*Subscription)}
		b.topics[name] = t
	}
	return t
}

// Publish appends a message with the next sequential offset and wakes every
// live subscription on the topic.
func (b *EventBus) Publish(topic string, payload any) model.Message {
	b.mu.Lock()
	t := b.topic(topic)
	msg := model.Message{
		Offset:    int64(len(t.messages)),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	t.messages = append(t.messages, msg)
	subs := make([]*Subscription, 0, len(t.subs))
	for _, sub := range t.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.notify <- struct{}{}:
		default:
			// A pending wakeup already covers this append.
		}
	}

	b.logger.Debug().Str("topic", topic).Int64("offset", msg.Offset).Msg("message published")
	return msg
}

// Subscribe creates the topic if absent and returns a streaming subscription
// that replays the full history before following live publishes.
func (b *EventBus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		Topic:  topic,
		ch:     make(chan model.Message, b.bufSize),
		done:   make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
	sub.C = sub.ch

	b.mu.Lock()
	b.topic(topic).subs[sub.ID] = sub
	b.mu.Unlock()

	go b.pump(sub)

	b.logger.Debug().Str("topic", topic).Str("subscription", sub.ID).Msg("subscriber attached")
	return sub
}

// pump moves messages from the topic log to the subscription channel. It
// owns sub.ch: the channel is closed exactly once, when the pump exits.
func (b *EventBus) pump(sub *Subscription) {
	defer func() {
		b.remove(sub)
		close(sub.ch)
	}()

	var cursor int
	for {
		b.mu.RLock()
		log := b.topics[sub.Topic].messages
		pending := log[cursor:]
		b.mu.RUnlock()

		for _, msg := range pending {
			select {
			case sub.ch <- msg:
			case <-sub.done:
				return
			}
		}
		cursor += len(pending)

		select {
		case <-sub.notify:
		case <-sub.done:
			return
		}
	}
}

// remove detaches a subscription from its topic's live set.
func (b *EventBus) remove(sub *Subscription) {
	b.mu.Lock()
	if t, ok := b.topics[sub.Topic]; ok {
		delete(t.subs, sub.ID)
	}
	b.mu.Unlock()

	b.logger.Debug().Str("topic", sub.Topic).Str("subscription", sub.ID).Msg("subscriber detached")
}

// Snapshot creates the topic if absent and returns a one-shot copy of its
// history, the poll-mode counterpart of Subscribe.
func (b *EventBus) Snapshot(topic string) []model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := b.topic(topic)
	out := make([]model.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Topics returns the message count per topic.
func (b *EventBus) Topics() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]int, len(b.topics))
	for name, t := range b.topics {
		out[name] = len(t.messages)
	}
	return out
}

// SubscriberCount reports the number of live subscriptions on a topic.
func (b *EventBus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if t, ok := b.topics[topic]; ok {
		return len(t.subs)
	}
	return 0
}
