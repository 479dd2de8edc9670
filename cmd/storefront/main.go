package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/logger"
	"github.com/jafarshop/storefront/internal/money"
	"github.com/jafarshop/storefront/internal/storefront"
)

const sessionFile = ".storefront-session"

func usage() {
	fmt.Println("Usage: storefront <command> [args]")
	fmt.Println()
	fmt.Println("Cart:")
	fmt.Println("  add <product-id> <title> <unit-price> <quantity>")
	fmt.Println("  remove <product-id>")
	fmt.Println("  update <product-id> <quantity>")
	fmt.Println("  show")
	fmt.Println("  clear")
	fmt.Println()
	fmt.Println("Checkout:")
	fmt.Println("  submit <form.json>    then type: success <reference> | error <message> | close")
	fmt.Println("  resume <order-id>     pay for an order left pending by an earlier submit")
	fmt.Println()
	fmt.Println("Orders:")
	fmt.Println("  orders [status]")
	fmt.Println("  order <order-id>")
	fmt.Println("  pay <order-id> <reference> <amount> [PAID|FAILED|REFUNDED]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateClient(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	store     *cart.Store
	client    *storefront.Client
	unit      currency.Unit
	log       *zap.Logger
	closeRepo func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return nil, err
	}

	sessionID, err := resolveSession(cfg.CartStore.SessionID)
	if err != nil {
		return nil, err
	}

	repo, closeRepo, err := cart.OpenRepository(ctx, cfg.CartStore)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart store: %w", err)
	}

	store, err := cart.Open(ctx, sessionID, repo, log)
	if err != nil {
		closeRepo()
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return &app{
		store:     store,
		client:    storefront.NewClient(cfg.Storefront, log),
		unit:      unit,
		log:       log,
		closeRepo: closeRepo,
	}, nil
}

func (a *app) close() {
	if err := a.closeRepo(); err != nil {
		a.log.Warn("Failed to close cart store", zap.Error(err))
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "add":
		if len(args) != 4 {
			return fmt.Errorf("usage: add <product-id> <title> <unit-price> <quantity>")
		}
		price, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || price < 0 {
			return fmt.Errorf("unit price must be a non-negative integer in minor units")
		}
		qty, err := strconv.Atoi(args[3])
		if err != nil || qty < 1 {
			return fmt.Errorf("quantity must be a positive integer")
		}
		if err := a.store.AddItem(ctx, domain.LineItem{ProductID: args[0], Title: args[1], UnitPrice: price, Quantity: qty}); err != nil {
			return err
		}
		a.printCart()

	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: remove <product-id>")
		}
		if err := a.store.RemoveItem(ctx, args[0]); err != nil {
			return err
		}
		a.printCart()

	case "update":
		if len(args) != 2 {
			return fmt.Errorf("usage: update <product-id> <quantity>")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity must be an integer")
		}
		if err := a.store.UpdateQuantity(ctx, args[0], qty); err != nil {
			return err
		}
		a.printCart()

	case "show":
		a.printCart()

	case "clear":
		if err := a.store.Clear(ctx); err != nil {
			return err
		}
		a.printCart()

	case "submit":
		if len(args) != 1 {
			return fmt.Errorf("usage: submit <form.json>")
		}
		return a.submit(ctx, args[0])

	case "resume":
		if len(args) != 1 {
			return fmt.Errorf("usage: resume <order-id>")
		}
		return a.resume(ctx, args[0], os.Stdin)

	case "orders":
		var status domain.OrderStatus
		if len(args) > 0 {
			status = domain.OrderStatus(args[0])
		}
		list, err := a.client.ListOrders(ctx, status, 50, 0)
		if err != nil {
			return err
		}
		for _, o := range list.Orders {
			fmt.Printf("%s  %-20s  %s  %s\n", o.ID, o.Status, money.Format(o.Total, a.unit), o.CreatedAt)
		}

	case "order":
		if len(args) != 1 {
			return fmt.Errorf("usage: order <order-id>")
		}
		o, err := a.client.GetOrder(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Order %s\n", o.ID)
		fmt.Printf("Status: %s\n", o.Status)
		fmt.Printf("Total: %s\n", money.Format(o.Total, a.unit))
		fmt.Printf("Customer: %s %s <%s>\n", o.Customer.Name, o.Customer.LastName, o.Customer.Email)
		for _, item := range o.Items {
			fmt.Printf("  %s x%d\n", item.ProductID, item.Quantity)
		}
		if len(o.FailedProductIDs) > 0 {
			fmt.Printf("Needs reconciliation for: %v\n", o.FailedProductIDs)
		}

	case "pay":
		if len(args) < 3 {
			return fmt.Errorf("usage: pay <order-id> <reference> <amount> [status]")
		}
		amount, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("amount must be an integer in minor units")
		}
		status := domain.PaymentStatusPaid
		if len(args) > 3 {
			status = domain.PaymentStatus(args[3])
		}
		if err := a.client.NotifyPayment(ctx, storefront.PaymentNotification{
			Reference: args[1],
			OrderID:   args[0],
			Status:    status,
			Amount:    amount,
		}); err != nil {
			return err
		}
		fmt.Printf("✅ Payment %s recorded as %s\n", args[1], status)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (a *app) submit(ctx context.Context, formPath string) error {
	raw, err := os.ReadFile(formPath)
	if err != nil {
		return fmt.Errorf("failed to read form: %w", err)
	}
	var form domain.CheckoutForm
	if err := json.Unmarshal(raw, &form); err != nil {
		return fmt.Errorf("failed to parse form: %w", err)
	}

	notifier := newConsoleNotifier(os.Stdout)
	orchestrator := checkout.NewOrchestrator(a.client, a.store, notifier, a.log)

	sub, err := orchestrator.Submit(ctx, form)
	if err != nil {
		printResult(sub.Result())
		return err
	}

	fmt.Printf("🧾 Order %s created for %s\n", sub.OrderID(), money.Format(sub.Total(), a.unit))
	return a.pay(ctx, sub, notifier, os.Stdin)
}

// resume picks up the payment step of a pending order created earlier
func (a *app) resume(ctx context.Context, orderID string, in io.Reader) error {
	sub, err := checkout.ResumeSubmission(ctx, a.client, orderID)
	if err != nil {
		return err
	}

	fmt.Printf("🧾 Order %s awaiting payment of %s\n", sub.OrderID(), money.Format(sub.Total(), a.unit))
	return a.pay(ctx, sub, newConsoleNotifier(os.Stdout), in)
}

func (a *app) pay(ctx context.Context, sub *checkout.Submission, notifier checkout.Notifier, in io.Reader) error {
	fmt.Println("Complete the payment, then type: success <reference> | error <message> | close")

	bridge := checkout.NewPaymentBridge(a.client, a.store, notifier, a.log, func(orderID string) {
		fmt.Printf("➡️  Redirecting to order %s\n", orderID)
	})
	if err := awaitPayment(ctx, in, bridge, sub); err != nil {
		return err
	}

	if sub.State() == domain.StateAwaitingPayment {
		fmt.Printf("Order %s is still pending, run: storefront resume %s\n", sub.OrderID(), sub.OrderID())
	}
	return nil
}

func (a *app) printCart() {
	c := a.store.Cart()
	if c.IsEmpty() {
		fmt.Println("🛒 Cart is empty")
		return
	}
	fmt.Printf("🛒 Cart (session %s)\n", a.store.SessionID())
	for _, item := range c.Items {
		fmt.Printf("  %-12s %-24s %3d x %s = %s\n",
			item.ProductID,
			item.Title,
			item.Quantity,
			money.Format(item.UnitPrice, a.unit),
			money.Format(item.Subtotal(), a.unit),
		)
	}
	fmt.Printf("Items: %d  Total: %s\n", c.TotalQuantity, money.Format(c.TotalAmount, a.unit))
}

func printResult(r domain.SubmissionResult) {
	fmt.Printf("Submission %s", r.Status)
	if r.OrderID != "" {
		fmt.Printf(" (order %s, %d items attached)", r.OrderID, r.AttachedItemCount)
	}
	fmt.Println()
	if len(r.FailedItemIDs) > 0 {
		fmt.Printf("  failed: %v\n", r.FailedItemIDs)
	}
	if len(r.SkippedItemIDs) > 0 {
		fmt.Printf("  not attempted: %v\n", r.SkippedItemIDs)
	}
	for _, fe := range r.Errors {
		fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
	}
}

// resolveSession prefers STOREFRONT_SESSION, then the session file, and
// otherwise starts a new session and remembers it.
func resolveSession(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if raw, err := os.ReadFile(sessionFile); err == nil {
		if id, err := uuid.ParseBytes(trimNewline(raw)); err == nil {
			return id.String(), nil
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(sessionFile, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
