package messaging

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	contractsv1 "lunchlauncher/contracts/gen/events/v1"
)

const groupBuffer = 128

// Handler consumes one event. Errors are logged and do not stop delivery.
type Handler func(context.Context, contractsv1.Envelope) error

// Bus is an in-process publish/subscribe event bus keyed by topic and
// consumer group.
//
// Every consumer group on a topic receives each event exactly once. Within a
// group the event goes to one member, picked by its partition key, and a
// single dispatch loop per group keeps events of one partition in publish
// order. Publish blocks while a group's buffer is full instead of dropping.
type Bus struct {
	mu     sync.RWMutex
	groups map[string]map[string]*consumerGroup
	logger *slog.Logger
}

type member struct {
	ctx     context.Context
	handler Handler
}

type consumerGroup struct {
	topic  string
	name   string
	events chan contractsv1.Envelope
	done   chan struct{}

	mu      sync.Mutex
	members []*member
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		groups: make(map[string]map[string]*consumerGroup),
		logger: logger,
	}
}

// Publish hands event to every consumer group on topic. It returns ctx.Err()
// if ctx ends while a group is still backed up.
func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	b.mu.RLock()
	targets := make([]*consumerGroup, 0, len(b.groups[topic]))
	for _, group := range b.groups[topic] {
		targets = append(targets, group)
	}
	b.mu.RUnlock()

	for _, group := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-group.done:
		case group.events <- event:
		}
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"consumer_groups", len(targets),
	)
	return nil
}

// Subscribe joins handler to the named consumer group on topic until ctx is
// cancelled. The group is dropped, along with any undelivered events, once
// its last member leaves.
func (b *Bus) Subscribe(ctx context.Context, topic string, groupName string, handler Handler) error {
	m := &member{ctx: ctx, handler: handler}

	b.mu.Lock()
	byName := b.groups[topic]
	if byName == nil {
		byName = make(map[string]*consumerGroup)
		b.groups[topic] = byName
	}
	group := byName[groupName]
	if group == nil {
		group = newConsumerGroup(topic, groupName)
		byName[groupName] = group
		go group.dispatch(b.logger)
	}
	group.join(m)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.leave(group, m)
	}()
	return nil
}

func (b *Bus) leave(group *consumerGroup, m *member) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if group.leave(m) > 0 {
		return
	}
	delete(b.groups[group.topic], group.name)
	if len(b.groups[group.topic]) == 0 {
		delete(b.groups, group.topic)
	}
	close(group.done)
}

func newConsumerGroup(topic string, name string) *consumerGroup {
	return &consumerGroup{
		topic:  topic,
		name:   name,
		events: make(chan contractsv1.Envelope, groupBuffer),
		done:   make(chan struct{}),
	}
}

func (g *consumerGroup) join(m *member) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members = append(g.members, m)
}

// leave removes m and returns how many members remain.
func (g *consumerGroup) leave(m *member) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.members[:0]
	for _, item := range g.members {
		if item != m {
			kept = append(kept, item)
		}
	}
	g.members = kept
	return len(kept)
}

func (g *consumerGroup) assign(partitionKey string) *member {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.members) == 0 {
		return nil
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(partitionKey))
	return g.members[h.Sum32()%uint32(len(g.members))]
}

func (g *consumerGroup) dispatch(logger *slog.Logger) {
	for {
		select {
		case <-g.done:
			return
		case event := <-g.events:
			m := g.assign(event.PartitionKey)
			if m == nil {
				continue
			}
			if err := m.handler(m.ctx, event); err != nil {
				logger.Error("consumer handler failed",
					"event", "bus_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", g.topic,
					"consumer_group", g.name,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}
