package billing

import "github.com/wolfman30/practice-admin-console/pkg/logging"

// Notifier surfaces save outcomes to the user. The host view plugs in its
// own implementation (toast, status bar); the default just logs.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

type logNotifier struct {
	logger *logging.Logger
}

func (n logNotifier) Success(msg string) { n.logger.Info("notify", "message", msg) }
func (n logNotifier) Failure(msg string) { n.logger.Error("notify", "message", msg) }
