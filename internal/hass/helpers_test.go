package hass

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"
)

var testTopics = mqtt.Topics{
	DiscoveryPrefix: "homeassistant",
	StatePrefix:     "cozytouch",
	NodeID:          "bridge",
}

// fakeEntity is a mutable Entity for platform tests.
type fakeEntity struct {
	id      string
	name    string
	class   DeviceClass
	device  DeviceInfo
	devErr  error
	on      bool
	readErr error
}

func (f *fakeEntity) UniqueID() string         { return f.id }
func (f *fakeEntity) Name() string             { return f.name }
func (f *fakeEntity) DeviceClass() DeviceClass { return f.class }

func (f *fakeEntity) DeviceInfo() (DeviceInfo, error) {
	if f.devErr != nil {
		return DeviceInfo{}, f.devErr
	}
	return f.device, nil
}

func (f *fakeEntity) IsOn() (bool, error) {
	if f.readErr != nil {
		return false, f.readErr
	}
	return f.on, nil
}

func newFakeEntity(id string) *fakeEntity {
	return &fakeEntity{
		id:    id,
		name:  "Lounge " + id,
		class: DeviceClassOccupancy,
		device: DeviceInfo{
			Identifiers:  []Identifier{{Domain: "cozytouch", ID: "parent-1"}},
			Name:         "Radiator",
			Manufacturer: "Atlantic",
			ViaDevice:    Identifier{Domain: "cozytouch", ID: "place-1"},
		},
	}
}

type publishedMessage struct {
	topic    string
	payload  string
	retained bool
}

// fakePublisher records publishes and subscriptions.
type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	handlers map[string]mqtt.MessageHandler
	failSub  bool
	failPub  bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakePublisher) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPub {
		return mqtt.ErrNotConnected
	}
	f.messages = append(f.messages, publishedMessage{topic: topic, payload: string(payload), retained: retained})
	return nil
}

func (f *fakePublisher) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if f.failSub {
		return errors.New("not connected")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakePublisher) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.handlers[topic]; !ok {
		return errors.New("not subscribed")
	}
	delete(f.handlers, topic)
	return nil
}

func (f *fakePublisher) setFailPublish(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPub = fail
}

// take returns and clears the recorded messages.
func (f *fakePublisher) take() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages
	f.messages = nil
	return msgs
}

// last returns the most recent payload published to topic.
func (f *fakePublisher) last(topic string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].topic == topic {
			return f.messages[i].payload, true
		}
	}
	return "", false
}

type recordingObserver struct {
	mu     sync.Mutex
	states []EntityState
}

func (r *recordingObserver) EntityStateChanged(state EntityState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// setupTestDB creates an in-memory SQLite database with the entity_registry table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE entity_registry (
			unique_id TEXT PRIMARY KEY,
			config_entry_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			name TEXT NOT NULL,
			device_class TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
		CREATE INDEX idx_entity_registry_entry ON entity_registry(config_entry_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}
