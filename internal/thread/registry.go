package thread

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Thread is one user's conversation: the ordered transcript plus the persona
// currently handling the conversation. A thread also carries a turn lock so
// concurrent submissions from the same user are processed one at a time.
type Thread struct {
	ID        string
	UserID    string
	CreatedAt time.Time

	turnMu sync.Mutex

	mu            sync.Mutex
	messages      []Message
	activePersona string
	updatedAt     time.Time
}

func newThread(userID, defaultPersona string) *Thread {
	now := time.Now().UTC()
	return &Thread{
		ID:            newThreadID(),
		UserID:        userID,
		CreatedAt:     now,
		activePersona: defaultPersona,
		updatedAt:     now,
	}
}

func newThreadID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// BeginTurn acquires the thread's turn lock, blocking until any in-flight
// turn completes. Callers must pair it with EndTurn.
func (t *Thread) BeginTurn() {
	t.turnMu.Lock()
}

// EndTurn releases the turn lock.
func (t *Thread) EndTurn() {
	t.turnMu.Unlock()
}

// Append adds a message to the transcript.
func (t *Thread) Append(role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, Message{Role: role, Content: content})
	t.updatedAt = time.Now().UTC()
}

// History returns a copy of the transcript in order.
func (t *Thread) History() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Window returns the last n messages of the transcript, or the full
// transcript when n <= 0.
func (t *Thread) Window(n int) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Len returns the transcript length.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// ActivePersona returns the persona currently assigned to the thread.
func (t *Thread) ActivePersona() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activePersona
}

// SetActivePersona reassigns the thread's persona.
func (t *Thread) SetActivePersona(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activePersona = id
	t.updatedAt = time.Now().UTC()
}

// UpdatedAt returns the time of the last transcript or persona change.
func (t *Thread) UpdatedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updatedAt
}

// Stats is a point-in-time snapshot of registry size.
type Stats struct {
	Threads  int
	Messages int
}

// Registry maps user IDs to their conversation threads. Threads are created
// lazily on first use and live for the lifetime of the process.
type Registry struct {
	mu             sync.RWMutex
	threads        map[string]*Thread
	defaultPersona string
}

// NewRegistry creates an empty registry. New threads start assigned to
// defaultPersona.
func NewRegistry(defaultPersona string) *Registry {
	return &Registry{
		threads:        make(map[string]*Thread),
		defaultPersona: defaultPersona,
	}
}

// GetOrCreate returns the thread for userID, creating it on first use.
func (r *Registry) GetOrCreate(userID string) *Thread {
	r.mu.RLock()
	t, ok := r.threads[userID]
	r.mu.RUnlock()
	if ok {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.threads[userID]; ok {
		return t
	}
	t = newThread(userID, r.defaultPersona)
	r.threads[userID] = t
	return t
}

// Get returns the thread for userID if one exists.
func (r *Registry) Get(userID string) (*Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.threads[userID]
	return t, ok
}

// Snapshot returns registry-wide counters.
func (r *Registry) Snapshot() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{Threads: len(r.threads)}
	for _, t := range r.threads {
		s.Messages += t.Len()
	}
	return s
}
