package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/rollcall/rollcall-backend/internal/attendance/domain"
)

// MockPublisher is a mock event publisher for testing
type MockPublisher struct {
	mu              sync.Mutex
	PublishedEvents []PublishedEvent
	// Err, when set, is returned by Publish and nothing is recorded.
	Err error
}

// PublishedEvent represents an event that was published
type PublishedEvent struct {
	Type    string
	Payload interface{}
}

// NewMockPublisher creates a new mock publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		PublishedEvents: make([]PublishedEvent, 0),
	}
}

// Publish records an event for later verification
func (m *MockPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.PublishedEvents = append(m.PublishedEvents, PublishedEvent{
		Type:    eventType,
		Payload: payload,
	})
	return nil
}

// Events returns a copy of the recorded events
func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishedEvent{}, m.PublishedEvents...)
}

// AssertEventPublished checks if an event of the given type was published
func (m *MockPublisher) AssertEventPublished(t *testing.T, eventType string) {
	t.Helper()
	for _, e := range m.Events() {
		if e.Type == eventType {
			return
		}
	}
	t.Errorf("expected event %q to be published, but it wasn't", eventType)
}

// AssertNoEventsPublished checks that no events were published
func (m *MockPublisher) AssertNoEventsPublished(t *testing.T) {
	t.Helper()
	if events := m.Events(); len(events) > 0 {
		t.Errorf("expected no events, but got %d: %+v", len(events), events)
	}
}

// Reset clears all published events
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishedEvents = make([]PublishedEvent, 0)
}

// CapturingCommitter records ledger snapshots.
type CapturingCommitter struct {
	mu        sync.Mutex
	Snapshots []*domain.Snapshot
	Finalized []*domain.Snapshot
	// Err, when set, fails every commit.
	Err error
}

// CommitSnapshot records a snapshot.
func (c *CapturingCommitter) CommitSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Snapshots = append(c.Snapshots, snap)
	return nil
}

// CommitFinalized records a finalized snapshot.
func (c *CapturingCommitter) CommitFinalized(ctx context.Context, snap *domain.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Finalized = append(c.Finalized, snap)
	return nil
}

// SnapshotCount returns how many non-final commits were recorded.
func (c *CapturingCommitter) SnapshotCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Snapshots)
}

// ScriptedConfirmer answers confirmation prompts from a fixed script.
// Once the script runs out, Default is returned.
type ScriptedConfirmer struct {
	mu      sync.Mutex
	Answers []bool
	Default bool
	Prompts []string
}

// AlwaysConfirm approves every prompt.
func AlwaysConfirm() *ScriptedConfirmer {
	return &ScriptedConfirmer{Default: true}
}

// NeverConfirm declines every prompt.
func NeverConfirm() *ScriptedConfirmer {
	return &ScriptedConfirmer{Default: false}
}

// Confirm records the prompt and returns the next scripted answer.
func (s *ScriptedConfirmer) Confirm(ctx context.Context, prompt string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Answers) == 0 {
		return s.Default
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}

// PromptCount returns how many prompts were shown.
func (s *ScriptedConfirmer) PromptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}
