// Package cart owns the session cart: a Store wraps the cart aggregate and
// writes every mutation through a Repository.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

const defaultMaxAttempts = 5

// Store is the single owner of one session's cart.
type Store struct {
	mu          sync.Mutex
	sessionID   string
	repo        Repository
	logger      *zap.Logger
	cart        domain.Cart
	version     int64
	generation  string
	maxAttempts int
}

// Open loads the session's cart. A session without a saved cart starts empty.
// The saved snapshot is used as-is.
func Open(ctx context.Context, sessionID string, repo Repository, logger *zap.Logger) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is empty")
	}

	s := &Store{
		sessionID:   sessionID,
		repo:        repo,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// SessionID returns the session the store is bound to
func (s *Store) SessionID() string {
	return s.sessionID
}

// Cart returns a copy of the current cart
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Version returns the version of the last loaded or saved snapshot
func (s *Store) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// CheckoutToken identifies the current cart state of this session. Two
// submissions of the same cart state share a token.
func (s *Store) CheckoutToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token()
}

// CheckoutCart returns a copy of the cart together with the token of that
// exact cart state.
func (s *Store) CheckoutCart() (domain.Cart, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone(), s.token()
}

func (s *Store) token() string {
	return fmt.Sprintf("%s:%s:%d", s.sessionID, s.generation, s.version)
}

func (s *Store) AddItem(ctx context.Context, item domain.LineItem) error {
	return s.mutate(ctx, "add_item", func(c *domain.Cart) { c.AddItem(item) })
}

func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove_item", func(c *domain.Cart) { c.RemoveItem(productID) })
}

func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return s.mutate(ctx, "update_quantity", func(c *domain.Cart) { c.UpdateQuantity(productID, quantity) })
}

func (s *Store) Recalculate(ctx context.Context) error {
	return s.mutate(ctx, "recalculate", func(c *domain.Cart) { c.Recalculate() })
}

// Clear empties the cart and starts a new generation.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutateSnapshot(ctx, "clear", func(snap *Snapshot) {
		snap.Cart.Clear()
		snap.Generation = uuid.NewString()
	})
}

// Renew keeps the cart contents but starts a new generation, so the next
// checkout gets a fresh token. Used after an order was created for the
// current token but the submission failed.
func (s *Store) Renew(ctx context.Context) error {
	return s.mutateSnapshot(ctx, "renew", func(snap *Snapshot) {
		snap.Generation = uuid.NewString()
	})
}

// Refresh reloads the cart from the repository, picking up writes made by
// other stores on the same session.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *Store) mutate(ctx context.Context, op string, fn func(c *domain.Cart)) error {
	return s.mutateSnapshot(ctx, op, func(snap *Snapshot) { fn(&snap.Cart) })
}

// mutateSnapshot applies fn to a copy of the snapshot and saves it. When
// another writer saved first, the latest snapshot is reloaded and fn is
// applied again.
func (s *Store) mutateSnapshot(ctx context.Context, op string, fn func(snap *Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		snapshot := Snapshot{
			Cart:       s.cart.Clone(),
			Version:    s.version + 1,
			Generation: s.generation,
		}
		fn(&snapshot)

		err := s.repo.Save(ctx, s.sessionID, snapshot, s.version)
		if err == nil {
			s.cart = snapshot.Cart
			s.version = snapshot.Version
			s.generation = snapshot.Generation
			return nil
		}
		if !errors.Is(err, ErrStaleSnapshot) {
			s.logger.Error("Failed to save cart",
				zap.String("session_id", s.sessionID),
				zap.String("op", op),
				zap.Error(err),
			)
			return fmt.Errorf("repo.Save: %w", err)
		}

		s.logger.Info("Cart changed by another writer, reapplying",
			zap.String("session_id", s.sessionID),
			zap.String("op", op),
			zap.Int64("version", s.version),
			zap.Int("attempt", attempt),
		)
		if err := s.reload(ctx); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s: %w after %d attempts", op, ErrStaleSnapshot, s.maxAttempts)
}

func (s *Store) reload(ctx context.Context) error {
	snapshot, err := s.repo.Load(ctx, s.sessionID)
	if errors.Is(err, ErrSnapshotNotFound) {
		// a lost snapshot restarts at version 0, so it must not reuse a generation
		s.cart = domain.Cart{Items: []domain.LineItem{}}
		s.version = 0
		s.generation = uuid.NewString()
		return nil
	}
	if err != nil {
		return fmt.Errorf("repo.Load: %w", err)
	}

	s.cart = snapshot.Cart
	if s.cart.Items == nil {
		s.cart.Items = []domain.LineItem{}
	}
	s.version = snapshot.Version
	s.generation = snapshot.Generation
	if s.generation == "" {
		s.generation = uuid.NewString()
	}
	return nil
}
