package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTimeout is how long a session may sit idle before it is
// silently reset on the next message.
const DefaultSessionTimeout = 30 * time.Minute

// DefaultHistoryCap bounds how many turns a session retains.
const DefaultHistoryCap = 20

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session's conversation history. ToolCall carries a
// short summary when the assistant turn was produced by a pipeline tool.
type Turn struct {
	Role     Role      `json:"role"`
	Content  string    `json:"content"`
	ToolCall string    `json:"tool_call,omitempty"`
	At       time.Time `json:"at"`
}

// Session holds per-conversation state. All access goes through the Manager.
type Session struct {
	ID           uuid.UUID
	History      []Turn
	LastActivity time.Time
}

// SessionManager owns the in-memory session map. Idle expiry is checked
// lazily on access rather than by a background timer.
type SessionManager struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	timeout    time.Duration
	historyCap int

	now func() time.Time
}

// NewSessionManager creates a manager with the given idle timeout and
// history cap; zero values fall back to the defaults.
func NewSessionManager(timeout time.Duration, historyCap int) *SessionManager {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &SessionManager{
		sessions:   make(map[string]*Session),
		timeout:    timeout,
		historyCap: historyCap,
		now:        time.Now,
	}
}

// Touch returns the live session for key, resetting it first if it has been
// idle past the timeout. The caller is never told a reset happened; the
// emptied history is the only signal.
func (m *SessionManager) Touch(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	sess, ok := m.sessions[key]
	if !ok || now.Sub(sess.LastActivity) > m.timeout {
		sess = &Session{ID: uuid.New(), LastActivity: now}
		m.sessions[key] = sess
	}
	sess.LastActivity = now
	return sess
}

// Append adds a turn to the session's history and trims to the cap, oldest
// turns dropped first.
func (m *SessionManager) Append(key string, turn Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[key]
	if !ok {
		return
	}
	if turn.At.IsZero() {
		turn.At = m.now()
	}
	sess.History = append(sess.History, turn)
	if over := len(sess.History) - m.historyCap; over > 0 {
		sess.History = sess.History[over:]
	}
}

// HistoryLen reports the current history length for key, 0 if absent.
func (m *SessionManager) HistoryLen(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[key]; ok {
		return len(sess.History)
	}
	return 0
}
