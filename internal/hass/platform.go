package hass

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client the platform needs.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger defines the logging interface used by the Platform.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StateObserver is told about every published state change.
type StateObserver interface {
	EntityStateChanged(state EntityState)
}

// Options configures a Platform.
type Options struct {
	// Publisher is required.
	Publisher Publisher

	Topics mqtt.Topics
	QoS    byte

	// StatusTopic is Home Assistant's birth topic. Empty disables
	// republish-on-birth.
	StatusTopic string

	// Repository persists the entity registry. Optional.
	Repository Repository

	// Available reports whether the data source is healthy. When it
	// returns false every entity is published unavailable. Optional.
	Available func() bool

	Origin Origin
}

// registered is an entity plus the platform's bookkeeping for it.
type registered struct {
	entity    Entity
	entryID   string
	state     EntityState
	published bool
}

// Platform hosts binary sensor entities and mirrors them to Home Assistant.
//
// Thread Safety: All methods are safe for concurrent use. Evaluation and
// publishing are serialised so state messages are never reordered.
type Platform struct {
	opts Options

	entities map[string]*registered
	// levels maps each encoded topic level to the unique id using it.
	levels   map[string]string
	observer StateObserver
	started  bool
	mu       sync.RWMutex

	// publishMu serialises evaluate-and-publish passes.
	publishMu sync.Mutex

	logger Logger
	now    func() time.Time
}

// NewPlatform creates a Platform. Call Start to listen for birth messages.
func NewPlatform(opts Options) (*Platform, error) {
	if opts.Publisher == nil {
		return nil, ErrPublisherRequired
	}
	return &Platform{
		opts:     opts,
		entities: make(map[string]*registered),
		levels:   make(map[string]string),
		logger:   noopLogger{},
		now:      time.Now,
	}, nil
}

// SetLogger sets the logger for the platform.
func (p *Platform) SetLogger(logger Logger) {
	p.logger = logger
}

// SetObserver sets the observer notified of state changes.
func (p *Platform) SetObserver(observer StateObserver) {
	p.mu.Lock()
	p.observer = observer
	p.mu.Unlock()
}

// Start subscribes to Home Assistant's status topic so discovery is
// republished when Home Assistant restarts.
func (p *Platform) Start() error {
	if p.opts.StatusTopic == "" {
		return nil
	}
	err := p.opts.Publisher.Subscribe(p.opts.StatusTopic, p.opts.QoS, func(_ string, payload []byte) error {
		if strings.TrimSpace(string(payload)) == mqtt.PayloadOnline {
			p.logger.Info("home assistant online, republishing discovery")
			p.Republish()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", p.opts.StatusTopic, err)
	}

	p.mu.Lock()
	p.started = true
	p.mu.Unlock()
	return nil
}

// Close stops listening for birth messages. Retained discovery and state
// stay on the broker; the bridge LWT marks every entity unavailable.
func (p *Platform) Close() error {
	p.mu.Lock()
	started := p.started
	p.started = false
	p.mu.Unlock()

	if !started {
		return nil
	}
	if err := p.opts.Publisher.Unsubscribe(p.opts.StatusTopic); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", p.opts.StatusTopic, err)
	}
	return nil
}

// AddEntitiesFor returns the registration callback for a config entry.
func (p *Platform) AddEntitiesFor(entry ConfigEntry) AddEntitiesFunc {
	return func(ctx context.Context, entities []Entity) error {
		return p.addEntities(ctx, entry, entities)
	}
}

// addEntities registers, persists, announces and publishes each entity.
// Duplicates and ids whose topic level is already taken are skipped and
// reported; publish failures are only logged because everything is
// republished on reconnect.
func (p *Platform) addEntities(ctx context.Context, entry ConfigEntry, entities []Entity) error {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	var errs []error
	added := 0
	for _, e := range entities {
		id := e.UniqueID()

		level := mqtt.TopicLevel(id)

		p.mu.Lock()
		if _, exists := p.entities[id]; exists {
			p.mu.Unlock()
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateEntity, id))
			continue
		}
		if owner, taken := p.levels[level]; taken {
			p.mu.Unlock()
			errs = append(errs, fmt.Errorf("%w: %s and %s both map to %s", ErrTopicCollision, id, owner, level))
			continue
		}
		reg := &registered{entity: e, entryID: entry.EntryID}
		p.entities[id] = reg
		p.levels[level] = id
		p.mu.Unlock()

		if p.opts.Repository != nil {
			if err := p.opts.Repository.Upsert(ctx, EntityRecord{
				UniqueID:      id,
				ConfigEntryID: entry.EntryID,
				Platform:      ComponentBinarySensor,
				Name:          e.Name(),
				DeviceClass:   string(e.DeviceClass()),
			}); err != nil {
				errs = append(errs, err)
			}
		}

		p.publishDiscovery(reg)
		p.evaluate(reg, true)
		added++
	}

	p.logger.Info("entities added",
		"entry_id", entry.EntryID,
		"added", added,
		"requested", len(entities),
	)
	return errors.Join(errs...)
}

// Refresh re-reads every entity and publishes what changed. It is wired
// as a coordinator listener.
func (p *Platform) Refresh() {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	for _, reg := range p.sorted() {
		p.evaluate(reg, false)
	}
}

// Republish re-announces every entity and republishes all state.
func (p *Platform) Republish() {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	for _, reg := range p.sorted() {
		p.publishDiscovery(reg)
		p.evaluate(reg, true)
	}
}

// PruneStale removes registry entries of a config entry that were not
// registered in this run, and clears their retained discovery config so
// Home Assistant deletes them. Returns the number removed.
//
// A record is only deleted once all its retained topics were cleared, so
// a failed clear is retried on the next run.
func (p *Platform) PruneStale(ctx context.Context, entryID string) (int, error) {
	if p.opts.Repository == nil {
		return 0, nil
	}

	records, err := p.opts.Repository.ListByEntry(ctx, entryID)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, rec := range records {
		p.mu.RLock()
		_, live := p.entities[rec.UniqueID]
		p.mu.RUnlock()
		if live {
			continue
		}

		if clearErr := p.clearRetained(rec.UniqueID); clearErr != nil {
			p.logger.Warn("clearing stale entity failed, keeping registry record",
				"unique_id", rec.UniqueID,
				"error", clearErr,
			)
			errs = append(errs, fmt.Errorf("clearing %s: %w", rec.UniqueID, clearErr))
			continue
		}

		if err := p.opts.Repository.Delete(ctx, rec.UniqueID); err != nil {
			return removed, errors.Join(append(errs, err)...)
		}
		removed++
		p.logger.Info("stale entity removed", "unique_id", rec.UniqueID, "entry_id", entryID)
	}
	return removed, errors.Join(errs...)
}

// clearRetained publishes an empty retained payload to each of an entity's
// topics, which deletes the retained message.
func (p *Platform) clearRetained(uniqueID string) error {
	var errs []error
	for _, topic := range []string{
		p.opts.Topics.DiscoveryConfig(ComponentBinarySensor, uniqueID),
		p.opts.Topics.EntityState(uniqueID),
		p.opts.Topics.EntityAvailability(uniqueID),
	} {
		if err := p.opts.Publisher.Publish(topic, nil, p.opts.QoS, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Entities returns the state of every entity, sorted by unique id.
func (p *Platform) Entities() []EntityState {
	regs := p.sorted()

	p.mu.RLock()
	defer p.mu.RUnlock()
	states := make([]EntityState, 0, len(regs))
	for _, reg := range regs {
		states = append(states, reg.state)
	}
	return states
}

// Entity returns one entity's state.
func (p *Platform) Entity(uniqueID string) (EntityState, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	reg, ok := p.entities[uniqueID]
	if !ok {
		return EntityState{}, fmt.Errorf("%w: %s", ErrEntityNotFound, uniqueID)
	}
	return reg.state, nil
}

// Count returns the number of registered entities.
func (p *Platform) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entities)
}

// sorted snapshots the registered entities in unique id order.
func (p *Platform) sorted() []*registered {
	p.mu.RLock()
	regs := make([]*registered, 0, len(p.entities))
	for _, reg := range p.entities {
		regs = append(regs, reg)
	}
	p.mu.RUnlock()

	sort.Slice(regs, func(i, j int) bool {
		return regs[i].entity.UniqueID() < regs[j].entity.UniqueID()
	})
	return regs
}

// publishDiscovery announces one entity. Caller holds publishMu.
func (p *Platform) publishDiscovery(reg *registered) {
	id := reg.entity.UniqueID()

	var device *DeviceInfo
	info, err := reg.entity.DeviceInfo()
	if err != nil {
		p.logger.Warn("device info unavailable, announcing without device", "unique_id", id, "error", err)
	} else {
		device = &info
	}

	payload, err := marshalDiscovery(buildDiscovery(reg.entity, device, p.opts.Topics, p.opts.Origin))
	if err != nil {
		p.logger.Error("encoding discovery config", "unique_id", id, "error", err)
		return
	}

	topic := p.opts.Topics.DiscoveryConfig(ComponentBinarySensor, id)
	if err := p.opts.Publisher.Publish(topic, payload, p.opts.QoS, true); err != nil {
		p.logger.Warn("publishing discovery config failed", "unique_id", id, "error", err)
	}
}

// evaluate reads the entity and publishes availability and state when they
// differ from what was last published, or always when force is set.
// Caller holds publishMu.
func (p *Platform) evaluate(reg *registered, force bool) {
	e := reg.entity
	id := e.UniqueID()

	next := EntityState{
		UniqueID:      id,
		ConfigEntryID: reg.entryID,
		Name:          e.Name(),
		DeviceClass:   string(e.DeviceClass()),
		UpdatedAt:     p.now(),
	}

	on, err := e.IsOn()
	switch {
	case err != nil:
		next.Error = err.Error()
	case p.opts.Available != nil && !p.opts.Available():
		next.On = on
		next.Error = "data source unavailable"
	default:
		next.On = on
		next.Available = true
	}

	p.mu.RLock()
	prev, published := reg.state, reg.published
	observer := p.observer
	p.mu.RUnlock()

	changed := !published ||
		prev.Available != next.Available ||
		prev.On != next.On ||
		prev.Error != next.Error
	if !changed && !force {
		return
	}

	if err != nil {
		p.logger.Warn("entity unavailable", "unique_id", id, "error", err)
	}

	availability := mqtt.PayloadOffline
	if next.Available {
		availability = mqtt.PayloadOnline
	}
	if pubErr := p.opts.Publisher.Publish(p.opts.Topics.EntityAvailability(id), []byte(availability), p.opts.QoS, true); pubErr != nil {
		p.logger.Warn("publishing availability failed", "unique_id", id, "error", pubErr)
	}
	if next.Available {
		if pubErr := p.opts.Publisher.Publish(p.opts.Topics.EntityState(id), []byte(next.StateString()), p.opts.QoS, true); pubErr != nil {
			p.logger.Warn("publishing state failed", "unique_id", id, "error", pubErr)
		}
	}

	p.mu.Lock()
	reg.state = next
	reg.published = true
	p.mu.Unlock()

	if changed && observer != nil {
		observer.EntityStateChanged(next)
	}
	p.logger.Debug("entity state published", "unique_id", id, "state", next.StateString(), "available", next.Available)
}
