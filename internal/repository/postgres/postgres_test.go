package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

type RepositorySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
	repos     *repository.Repositories
}

func TestRepositorySuite(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(db.Ping())
	s.Require().NoError(RunMigrations(db))

	s.db = db
	s.repos = NewRepositories(db, zap.NewNop())
}

func (s *RepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE order_events, payments, order_items, orders`)
	s.Require().NoError(err)
}

func (s *RepositorySuite) newOrder(token string) *domain.Order {
	order := &domain.Order{
		CheckoutToken: token,
		Customer:      domain.CheckoutForm{Name: "Rania", Email: "rania@example.com", City: "Amman"},
		Total:         2500,
		Status:        domain.OrderStatusPendingPayment,
	}
	s.Require().NoError(s.repos.Order.Create(context.Background(), order))
	return order
}

func (s *RepositorySuite) TestOrderRoundTrip() {
	order := s.newOrder("session-1:2")
	s.NotEqual(uuid.Nil, order.ID)

	got, err := s.repos.Order.GetByID(context.Background(), order.ID)
	s.Require().NoError(err)
	s.Equal(order.CheckoutToken, got.CheckoutToken)
	s.Equal(order.Customer, got.Customer)
	s.Equal(int64(2500), got.Total)
	s.Equal(domain.OrderStatusPendingPayment, got.Status)
	s.Empty(got.FailedProductIDs)
}

func (s *RepositorySuite) TestDuplicateCheckoutToken() {
	s.newOrder("session-1:2")

	err := s.repos.Order.Create(context.Background(), &domain.Order{
		CheckoutToken: "session-1:2",
		Status:        domain.OrderStatusPendingPayment,
	})
	var conflict *errors.ErrConflict
	s.ErrorAs(err, &conflict)
}

func (s *RepositorySuite) TestOrderNotFound() {
	_, err := s.repos.Order.GetByID(context.Background(), uuid.New())
	var notFound *errors.ErrNotFound
	s.ErrorAs(err, &notFound)
}

func (s *RepositorySuite) TestUpdateStatusKeepsFailedProducts() {
	ctx := context.Background()
	order := s.newOrder("session-2:1")

	s.Require().NoError(s.repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusNeedsReconciliation, []string{"B"}))
	s.Require().NoError(s.repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled, nil))

	got, err := s.repos.Order.GetByID(ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, got.Status)
	s.Equal([]string{"B"}, got.FailedProductIDs)
}

func (s *RepositorySuite) TestListByStatus() {
	ctx := context.Background()
	first := s.newOrder("a:1")
	s.newOrder("b:1")
	s.Require().NoError(s.repos.Order.UpdateStatus(ctx, first.ID, domain.OrderStatusPaid, nil))

	all, err := s.repos.Order.List(ctx, "", 10, 0)
	s.Require().NoError(err)
	s.Len(all, 2)

	paid, err := s.repos.Order.List(ctx, domain.OrderStatusPaid, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(paid, 1)
	s.Equal(first.ID, paid[0].ID)
}

func (s *RepositorySuite) TestOrderItems() {
	ctx := context.Background()
	order := s.newOrder("c:1")

	for _, pid := range []string{"A", "B"} {
		s.Require().NoError(s.repos.OrderItem.Create(ctx, &domain.OrderItem{OrderID: order.ID, ProductID: pid, Quantity: 1}))
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("A", items[0].ProductID)
	s.Equal("B", items[1].ProductID)
}

func (s *RepositorySuite) TestPaymentUpsert() {
	ctx := context.Background()
	order := s.newOrder("d:1")

	p := &domain.Payment{Reference: "ref-1", OrderID: order.ID, Status: domain.PaymentStatusFailed, Amount: 2500}
	s.Require().NoError(s.repos.Payment.Upsert(ctx, p))

	p.Status = domain.PaymentStatusPaid
	s.Require().NoError(s.repos.Payment.Upsert(ctx, p))

	got, err := s.repos.Payment.GetByReference(ctx, "ref-1")
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, got.Status)
	s.Equal(order.ID, got.OrderID)

	other := s.newOrder("e:1")
	err = s.repos.Payment.Upsert(ctx, &domain.Payment{Reference: "ref-1", OrderID: other.ID, Status: domain.PaymentStatusPaid})
	var conflict *errors.ErrConflict
	s.ErrorAs(err, &conflict)
}

func (s *RepositorySuite) TestEventOutbox() {
	ctx := context.Background()
	order := s.newOrder("f:1")

	event := &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "order_created",
		EventData: map[string]interface{}{"total": 2500},
	}
	s.Require().NoError(s.repos.OrderEvent.Create(ctx, event))

	pending, err := s.repos.OrderEvent.ListUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("order_created", pending[0].EventType)
	s.Equal(float64(2500), pending[0].EventData["total"])

	s.Require().NoError(s.repos.OrderEvent.MarkPublished(ctx, event.ID))

	pending, err = s.repos.OrderEvent.ListUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	var notFound *errors.ErrNotFound
	s.ErrorAs(s.repos.OrderEvent.MarkPublished(ctx, event.ID), &notFound)
}
