package quiz

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateNoQuestions State = iota
	StateInProgress
	StateSubmitting
	StateResults
)

func (s State) String() string {
	switch s {
	case StateNoQuestions:
		return "no_questions"
	case StateInProgress:
		return "in_progress"
	case StateSubmitting:
		return "submitting"
	case StateResults:
		return "results"
	}
	return "unknown"
}

var (
	ErrNotInProgress    = errors.New("quiz: attempt is not in progress")
	ErrAlreadySubmitted = errors.New("quiz: attempt was already submitted")
	ErrUnknownQuestion  = errors.New("quiz: question is not part of this quiz")
	ErrFirstQuestion    = errors.New("quiz: already at the first question")
	ErrLastQuestion     = errors.New("quiz: already at the last question")
)

// Session is the state machine for one quiz attempt:
//
//	no_questions | in_progress -> submitting -> results
//
// Results is terminal; a retake is a new Session. All methods are safe for
// concurrent use (the timer goroutine and request handlers share a session).
type Session struct {
	mu sync.Mutex

	quizID    uint
	userID    uint
	questions []Question
	answers   map[uint]string
	index     int
	remaining int // seconds; -1 means no time limit
	state     State
	startedAt time.Time
	result    Result
}

func NewSession(quizID, userID uint, questions []Question, timeLimitMinutes int) *Session {
	s := &Session{
		quizID:    quizID,
		userID:    userID,
		questions: questions,
		answers:   make(map[uint]string),
		remaining: -1,
		state:     StateInProgress,
		startedAt: time.Now(),
	}
	if len(questions) == 0 {
		s.state = StateNoQuestions
	}
	if timeLimitMinutes > 0 {
		s.remaining = timeLimitMinutes * 60
	}
	return s
}

func (s *Session) QuizID() uint { return s.quizID }

func (s *Session) UserID() uint { return s.userID }

func (s *Session) StartedAt() time.Time { return s.startedAt }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the active question together with its zero-based index and
// the total question count.
func (s *Session) Current() (Question, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return Question{}, 0, 0
	}
	return s.questions[s.index], s.index, len(s.questions)
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Answer records the chosen answer for a question. Answering is optional and
// can be changed while the attempt is in progress.
func (s *Session) Answer(questionID uint, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	for _, q := range s.questions {
		if q.ID == questionID {
			s.answers[questionID] = answer
			return nil
		}
	}
	return ErrUnknownQuestion
}

// Answers returns a copy of the recorded answer map.
func (s *Session) Answers() map[uint]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if s.index >= len(s.questions)-1 {
		return ErrLastQuestion
	}
	s.index++
	return nil
}

func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if s.index <= 0 {
		return ErrFirstQuestion
	}
	s.index--
	return nil
}

// Tick decrements the countdown by one second. It reports true exactly once:
// on the tick that reaches zero, which also moves the session to submitting
// so no concurrent submit can run twice.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.remaining < 0 {
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		return false
	}
	s.remaining = 0
	s.state = StateSubmitting
	s.result = Score(s.questions, s.answers)
	return true
}

// Submit moves the session to submitting and returns the computed result.
// Re-entry while submitting (or after results) fails with
// ErrAlreadySubmitted; the stored result is still returned so callers can
// show it.
func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateSubmitting, StateResults:
		return s.result, ErrAlreadySubmitted
	case StateNoQuestions:
		return Result{}, ErrNotInProgress
	}
	s.state = StateSubmitting
	s.result = Score(s.questions, s.answers)
	return s.result, nil
}

// Complete moves a submitting session to results. Persistence failures do not
// prevent completion: the computed result is still shown.
func (s *Session) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		s.state = StateResults
	}
}

func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}
