// Package sms sends outbound text messages and renders webhook replies.
package sms

import (
	"context"
	"log/slog"
)

// Transport delivers one outbound SMS.
type Transport interface {
	Send(ctx context.Context, to, body string) error
}

// LogTransport logs outbound messages instead of delivering them. It stands
// in for the real carrier in local development and tests.
type LogTransport struct{}

func (LogTransport) Send(ctx context.Context, to, body string) error {
	slog.Info("outbound sms (not delivered)", "to", to, "length", len(body))
	return nil
}
