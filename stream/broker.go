package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagelens/pagelens-observer/model"
	logger "github.com/zerok-ai/zk-utils-go/logs"
)

var brokerLogTag = "Broker"

// Update is one coalesced snapshot of the session list pushed to
// subscribers after the debounce window closes.
type Update struct {
	Sessions []model.PageSession `json:"sessions"`
}

// Broker fans session updates out to subscribers with a timer-reset-on-write
// debounce, so a burst of spans produces one update rather than one per
// span. Slow subscribers drop updates instead of blocking ingestion.
type Broker struct {
	mu          sync.Mutex
	subscribers map[string]chan Update
	debounce    time.Duration
	pending     *Update
	timer       *time.Timer
	closed      bool
}

func NewBroker(debounce time.Duration) *Broker {
	return &Broker{
		subscribers: map[string]chan Update{},
		debounce:    debounce,
	}
}

// Subscribe registers a consumer. The returned id is used to unsubscribe;
// unsubscribing at any time never affects ingestion.
func (b *Broker) Subscribe() (string, <-chan Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	ch := make(chan Update, 8)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	return id, ch
}

func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish stores the update as pending and (re)arms the debounce timer.
// Only the newest pending update survives the window.
func (b *Broker) Publish(update Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.pending = &update
	if b.debounce <= 0 {
		b.flushLocked()
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, b.flush)
}

func (b *Broker) flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *Broker) flushLocked() {
	if b.pending == nil || b.closed {
		return
	}
	update := *b.pending
	b.pending = nil
	for id, ch := range b.subscribers {
		select {
		case ch <- update:
		default:
			logger.Debug(brokerLogTag, "Dropping update for slow subscriber ", id)
		}
	}
}

// Close stops the timer and closes every subscriber channel. Safe to call
// concurrently with subscriber teardown.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.pending = nil
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
