package comms

import (
	"math/rand/v2"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Session is one user's mailbox and dialer.
type Session struct {
	Mailbox *Mailbox
	Dialer  *Dialer
}

// Sessions hands out a session per user, created on first use.
type Sessions struct {
	mu       sync.Mutex
	from     string
	cfg      DialerConfig
	logger   log.FieldLogger
	sessions map[string]*Session
}

// NewSessions creates an empty session registry.
func NewSessions(from string, cfg DialerConfig, logger log.FieldLogger) *Sessions {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Sessions{from: from, cfg: cfg, logger: logger, sessions: make(map[string]*Session)}
}

// Get returns the user's session, seeding a new mailbox from seed.
func (s *Sessions) Get(user string, seed []models.EmailHistoryEntry) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[user]; ok {
		return sess
	}
	cfg := s.cfg
	if cfg.Rand != nil {
		// Dialers run concurrently and *rand.Rand is not safe to share, so
		// each one gets its own source split off the configured one.
		cfg.Rand = rand.New(rand.NewPCG(s.cfg.Rand.Uint64(), s.cfg.Rand.Uint64()))
	}
	sess := &Session{
		Mailbox: NewMailbox(s.from, seed),
		Dialer:  NewDialer(cfg, s.logger.WithField("user", user)),
	}
	s.sessions[user] = sess
	return sess
}

// Close stops every dialer.
func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for user, sess := range s.sessions {
		sess.Dialer.Close()
		delete(s.sessions, user)
	}
}
