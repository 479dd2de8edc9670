package checkout

import (
	"fmt"
	"sync"

	"github.com/jafarshop/storefront/internal/domain"
)

// Submission tracks one checkout attempt. It is safe to read from other
// goroutines while the payment bridge drives it.
type Submission struct {
	mu     sync.Mutex
	state  domain.SubmissionState
	total  int64
	result domain.SubmissionResult
}

func newSubmission() *Submission {
	return &Submission{state: domain.StateIdle}
}

func (s *Submission) State() domain.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns a copy of the submission outcome so far
func (s *Submission) Result() domain.SubmissionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.result
	r.FailedItemIDs = append([]string(nil), s.result.FailedItemIDs...)
	r.SkippedItemIDs = append([]string(nil), s.result.SkippedItemIDs...)
	r.Errors = append([]domain.FieldError(nil), s.result.Errors...)
	return r
}

func (s *Submission) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.OrderID
}

// Total is the cart amount sent with the order
func (s *Submission) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Submission) setTotal(total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
}

func (s *Submission) transition(next domain.SubmissionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransitionTo(next) {
		return fmt.Errorf("invalid submission transition from %s to %s", s.state, next)
	}
	s.state = next
	return nil
}

func (s *Submission) update(fn func(r *domain.SubmissionResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.result)
}

// fail records the outcome and moves to Failed from whichever step is running.
func (s *Submission) fail(status domain.SubmissionStatus, fn func(r *domain.SubmissionResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result.Status = status
	if fn != nil {
		fn(&s.result)
	}
	if s.state.CanTransitionTo(domain.StateFailed) {
		s.state = domain.StateFailed
	}
}
