package adapter

import (
	"log/slog"

	"github.com/dwikikusuma/storefront/internal/serviceability"
)

// StaticAuthn is the session identity handed to the storefront at startup.
// An empty user id means "not signed in".
type StaticAuthn struct {
	UserID string
	Token  string
}

func (a StaticAuthn) CurrentUser() (string, bool) {
	return a.UserID, a.UserID != ""
}

func (a StaticAuthn) Credential() string {
	return a.Token
}

// LogNotifier writes shopper-facing confirmations to the structured log. A UI
// front end would swap in a toast implementation here.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(message string) {
	n.Log.Info("notify", slog.String("message", message))
}

type LogNavigator struct {
	Log *slog.Logger
}

func (n LogNavigator) NavigateTo(route string) {
	n.Log.Info("navigate", slog.String("route", route))
}

// ShippingChecker adapts the pincode table to checkout's serviceability port.
type ShippingChecker struct {
	Checker *serviceability.Checker
}

func (c ShippingChecker) Check(pincode string) error {
	_, err := c.Checker.Check(pincode)
	return err
}
