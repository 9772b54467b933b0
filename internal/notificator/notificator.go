package notificator

import (
	"runtime/debug"

	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/logger"
)

// Notificator fans operational alerts out to every configured provider.
// Providers left unconfigured are skipped.
type Notificator struct {
	logger *logger.Logger

	TelegramAlerter *TelegramAlerter
	EmailAlerter    *EmailAlerter
}

func NewNotificator(logger *logger.Logger, telAlerter *TelegramAlerter, emailAlerter *EmailAlerter) *Notificator {
	return &Notificator{logger: logger, TelegramAlerter: telAlerter, EmailAlerter: emailAlerter}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) SendAlert(alert *models.Alert) {
	if alert == nil {
		return
	}

	if n.TelegramAlerter != nil {
		n.safeCall(func() { n.TelegramAlerter.SendAlert(alert) }, "telegramAlert")
	}
	if n.EmailAlerter != nil {
		n.safeCall(func() { n.EmailAlerter.SendAlert(alert) }, "emailAlert")
	}
}
