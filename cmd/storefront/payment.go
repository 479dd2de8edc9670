package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jafarshop/storefront/internal/checkout"
)

type consoleNotifier struct {
	out io.Writer
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out}
}

func (n *consoleNotifier) Notify(notice checkout.Notice) {
	icon := "ℹ️ "
	switch notice.Level {
	case checkout.NoticeSuccess:
		icon = "✅"
	case checkout.NoticeError:
		icon = "⚠️ "
	}
	fmt.Fprintf(n.out, "%s %s\n", icon, notice.Message)
}

// paymentBridge is the part of *checkout.PaymentBridge driven by the console
type paymentBridge interface {
	Success(ctx context.Context, sub *checkout.Submission, reference string) error
	Error(sub *checkout.Submission, message string)
	Closed(sub *checkout.Submission)
}

// awaitPayment reads payment widget signals, one per line, until the payment
// is verified or the shopper closes the payment step.
func awaitPayment(ctx context.Context, in io.Reader, bridge paymentBridge, sub *checkout.Submission) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch cmd {
		case "success":
			if arg == "" {
				fmt.Println("usage: success <reference>")
				continue
			}
			err := bridge.Success(ctx, sub, strings.TrimSpace(arg))
			if errors.Is(err, checkout.ErrPaymentUnverified) {
				continue
			}
			return err
		case "error":
			bridge.Error(sub, strings.TrimSpace(arg))
		case "close":
			bridge.Closed(sub)
			return nil
		case "":
		default:
			fmt.Printf("unknown signal %q\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// input ended without a decision
	bridge.Closed(sub)
	return nil
}
