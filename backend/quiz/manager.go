package quiz

import (
	"errors"
	"log"
	"sync"
	"time"
)

// PersistFunc writes a finished attempt. It runs at most once per session,
// whether the submit came from the user or from the countdown expiring.
type PersistFunc func(s *Session, r Result) error

type sessionKey struct {
	UserID uint
	QuizID uint
}

// Manager holds the live attempt session per (user, quiz) and drives the
// one-second countdown for timed quizzes. Starting a new attempt replaces any
// previous session for the same pair, so a retake is always a fresh instance.
type Manager struct {
	mu       sync.Mutex
	sessions map[sessionKey]*runningSession
	persist  PersistFunc
	logger   *log.Logger

	// TickInterval is one second in production; tests shorten it.
	TickInterval time.Duration
}

type runningSession struct {
	session *Session
	stop    chan struct{}
}

var ErrNoSession = errors.New("quiz: no active attempt session")

func NewManager(persist PersistFunc, logger *log.Logger) *Manager {
	return &Manager{
		sessions:     make(map[sessionKey]*runningSession),
		persist:      persist,
		logger:       logger,
		TickInterval: time.Second,
	}
}

// Start creates a session for the attempt and, when the quiz is timed,
// launches its countdown. A quiz with no questions returns a terminal
// no-questions session that is never registered or persisted.
func (m *Manager) Start(userID, quizID uint, questions []Question, timeLimitMinutes int) *Session {
	session := NewSession(quizID, userID, questions, timeLimitMinutes)
	if session.State() == StateNoQuestions {
		return session
	}

	key := sessionKey{UserID: userID, QuizID: quizID}
	running := &runningSession{session: session, stop: make(chan struct{})}

	m.mu.Lock()
	if old, ok := m.sessions[key]; ok {
		close(old.stop)
	}
	m.sessions[key] = running
	m.mu.Unlock()

	if session.Remaining() >= 0 {
		go m.countdown(running)
	}
	return session
}

// Get returns the live session for the pair, if any.
func (m *Manager) Get(userID, quizID uint) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	running, ok := m.sessions[sessionKey{UserID: userID, QuizID: quizID}]
	if !ok {
		return nil, false
	}
	return running.session, true
}

// Submit finishes the session: computes the score, persists the attempt and
// moves the session to results. A persistence failure is returned alongside
// the result, which is still valid for display.
func (m *Manager) Submit(userID, quizID uint) (Result, error) {
	m.mu.Lock()
	running, ok := m.sessions[sessionKey{UserID: userID, QuizID: quizID}]
	m.mu.Unlock()
	if !ok {
		return Result{}, ErrNoSession
	}

	result, err := running.session.Submit()
	if err != nil {
		return result, err
	}
	return result, m.finish(running)
}

// finish persists the attempt and releases the countdown. Called exactly once
// per session: either from Submit or from the countdown goroutine.
func (m *Manager) finish(running *runningSession) error {
	select {
	case <-running.stop:
	default:
		close(running.stop)
	}

	persistErr := m.persist(running.session, running.session.Result())
	if persistErr != nil && m.logger != nil {
		m.logger.Printf("failed to persist quiz attempt (quiz %d, user %d): %v",
			running.session.QuizID(), running.session.UserID(), persistErr)
	}
	running.session.Complete()
	return persistErr
}

func (m *Manager) countdown(running *runningSession) {
	ticker := time.NewTicker(m.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-running.stop:
			return
		case <-ticker.C:
			if running.session.Tick() {
				// Time expired: Tick moved the session to submitting,
				// so a concurrent user submit cannot run again.
				if err := m.finish(running); err == nil && m.logger != nil {
					m.logger.Printf("quiz attempt auto-submitted on timeout (quiz %d, user %d)",
						running.session.QuizID(), running.session.UserID())
				}
				return
			}
		}
	}
}
