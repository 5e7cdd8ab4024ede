package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"strings"
	"sync"
)

type Publisher[E any] interface {
	Publish(evt E)
}

type Subscriber[E any] interface {
	Subscribe(ctx context.Context) Subscription[E]
}

type Subscription[E any] interface {
	ResultChan() <-chan E
	Stop()
}

// PubSub fans events out to subscribers.
// Publish never blocks: a subscriber with a full buffer is kicked,
// unless the PubSub was created with NewReplaying, in which case its oldest buffered event is dropped.
// A PubSub created with NewReplaying sends the latest event to every new subscriber.
type PubSub[E any] struct {
	mutex         sync.RWMutex
	subscriptions map[int64]*subscription[E]
	seq           int64
	stopped       bool
	replay        bool
	latest        *E
}

func New[E any]() *PubSub[E] {
	return &PubSub[E]{subscriptions: map[int64]*subscription[E]{}}
}

func NewReplaying[E any]() *PubSub[E] {
	p := New[E]()
	p.replay = true
	return p
}

// Latest returns the most recently published event.
func (p *PubSub[E]) Latest() (E, bool) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.latest == nil {
		var zero E
		return zero, false
	}

	return *p.latest, true
}

func (p *PubSub[E]) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopped = true

	for _, subscription := range p.subscriptions {
		subscription.cancel()
	}
}

func (p *PubSub[E]) Subscribe(ctx context.Context) Subscription[E] {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stopped {
		return noopSubscription[E]("noop-subscription")
	}

	p.seq++

	buf := make([]byte, 1024)
	i := goruntime.Stack(buf, true)
	buf = buf[:i]
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription[E]{
		id:     p.seq,
		cancel: cancel,
		pubsub: p,
		ch:     make(chan E, 10),
		stack:  string(buf),
	}
	p.subscriptions[s.id] = s

	if p.replay && p.latest != nil {
		s.ch <- *p.latest
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s
}

func (p *PubSub[E]) Publish(evt E) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stopped {
		return
	}

	if p.replay {
		p.latest = &evt
	}

	for _, s := range p.subscriptions {
		select {
		case s.ch <- evt:
			continue
		default:
		}

		if p.replay {
			// Only the latest event matters to a replaying subscriber.
			select {
			case <-s.ch:
			default:
			}
			select {
			case s.ch <- evt:
			default:
			}
			continue
		}

		slog.Warn(fmt.Sprintf("kicking subscriber since its event buffer is full, subscriber stack trace:\n  %s", strings.ReplaceAll(s.stack, "\n", "\n  ")))
		go s.Stop()
	}
}

type subscription[E any] struct {
	pubsub *PubSub[E]
	id     int64
	cancel context.CancelFunc
	ch     chan E
	stack  string
}

func (s *subscription[E]) Stop() {
	s.pubsub.mutex.Lock()
	delete(s.pubsub.subscriptions, s.id)
	ch := s.ch
	s.ch = nil
	s.pubsub.mutex.Unlock()
	if ch != nil {
		close(ch)
		s.cancel()
		for _ = range ch {
		}
	}
}

func (w *subscription[E]) ResultChan() <-chan E {
	return w.ch
}

type noopSubscription[E any] string

func (_ noopSubscription[E]) Stop() {}

func (_ noopSubscription[E]) ResultChan() <-chan E {
	ch := make(chan E, 0)
	close(ch)
	return ch
}
