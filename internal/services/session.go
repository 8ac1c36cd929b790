package services

import (
	"context"
	"sync"

	"github.com/AlterSupport/erad-trading-copilot-staging/internal/blotter"
	"github.com/sirupsen/logrus"
)

// Session bundles the per-user state: one registry, one chat session. All
// components mutate the same registry instance; there is no other copy.
type Session struct {
	UserID   string
	Registry *blotter.Registry
	Chat     *ChatSession
}

// SessionManager owns the sessions of signed-in users. Attaching restores the
// Redis snapshot when one exists (a client reload), otherwise it creates a
// fresh session and runs cloud reconciliation — exactly once per sign-in
// transition, gated by the registry's hasHydratedFromCloud flag.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	reconciler *Reconciler
	snapshots  *blotter.SnapshotStore
	contents   *blotter.ContentCache
	chatter    Chatter
	maxChat    int64
	logger     *logrus.Entry
}

// NewSessionManager creates a session manager.
func NewSessionManager(reconciler *Reconciler, snapshots *blotter.SnapshotStore, contents *blotter.ContentCache, chatter Chatter, maxChatAttachmentBytes int64) *SessionManager {
	return &SessionManager{
		sessions:   make(map[string]*Session),
		reconciler: reconciler,
		snapshots:  snapshots,
		contents:   contents,
		chatter:    chatter,
		maxChat:    maxChatAttachmentBytes,
		logger:     logrus.WithField("component", "session_manager"),
	}
}

// Attach returns the user's session, creating it if needed. A snapshot left
// by an earlier attachment is restored first; reconciliation only runs when
// the restored (or fresh) registry has not completed it yet, so a page reload
// does not re-trigger the sign-in protocol.
func (m *SessionManager) Attach(ctx context.Context, userID string) *Session {
	m.mu.Lock()
	if sess, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return sess
	}

	sess := &Session{
		UserID:   userID,
		Registry: blotter.NewRegistry(),
	}
	sess.Chat = NewChatSession(m.chatter, sess.Registry, m.contents, userID, m.maxChat)
	m.sessions[userID] = sess
	m.mu.Unlock()

	if m.snapshots != nil {
		state, found, err := m.snapshots.Load(ctx, userID)
		if err != nil {
			m.logger.WithError(err).WithField("user_id", userID).Warn("Failed to restore session snapshot")
		} else if found {
			sess.Registry.Restore(state)
		}
	}

	if !sess.Registry.Snapshot().HasHydratedFromCloud {
		m.reconciler.OnSignIn(ctx, sess.Registry, userID)
		m.Persist(ctx, userID)
	}

	return sess
}

// Get returns an attached session without creating one.
func (m *SessionManager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return sess, ok
}

// Persist writes the user's registry snapshot. Best-effort: persistence
// failures log and move on, the in-memory session stays authoritative.
func (m *SessionManager) Persist(ctx context.Context, userID string) {
	if m.snapshots == nil {
		return
	}
	sess, ok := m.Get(userID)
	if !ok {
		return
	}
	if err := m.snapshots.Save(ctx, userID, sess.Registry.Snapshot()); err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Warn("Failed to persist session snapshot")
	}
}

// Detach runs the sign-out teardown: registry reset, snapshot removal, chat
// history cleared, session dropped. Nothing of the user's session state stays
// reachable afterwards.
func (m *SessionManager) Detach(ctx context.Context, userID string) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return
	}

	m.reconciler.OnSignOut(sess.Registry)
	sess.Chat.Clear()

	if m.snapshots != nil {
		if err := m.snapshots.Delete(ctx, userID); err != nil {
			m.logger.WithError(err).WithField("user_id", userID).Warn("Failed to delete session snapshot")
		}
	}
}
