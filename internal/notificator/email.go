package notificator

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/logger"
)

// EmailAlerter delivers operational alerts to a fixed recipient over SMTP.
type EmailAlerter struct {
	logger *logger.Logger

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	Recipient    string

	SMTPAuth smtp.Auth
}

func NewEmailAlerter(logger *logger.Logger, SMTPHost string, SMTPPort int, SMTPUser string, SMTPPassword string, SMTPSender string, recipient string) *EmailAlerter {
	auth := smtp.PlainAuth(
		"",
		SMTPUser,
		SMTPPassword,
		SMTPHost,
	)

	return &EmailAlerter{
		logger:       logger,
		SMTPAuth:     auth,
		SMTPHost:     SMTPHost,
		SMTPPort:     SMTPPort,
		SMTPUser:     SMTPUser,
		SMTPPassword: SMTPPassword,
		SMTPSender:   SMTPSender,
		Recipient:    recipient,
	}
}

func (e *EmailAlerter) SendAlert(alert *models.Alert) {
	addr := fmt.Sprintf("%s:%s", e.SMTPHost, strconv.Itoa(e.SMTPPort))
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.SMTPSender, // From address
		e.Recipient,  // To address
		alert.Title,  // Subject
		alert.Message,
	)
	if err := smtp.SendMail(addr, e.SMTPAuth, e.SMTPSender, []string{e.Recipient}, []byte(msg)); err != nil {
		e.logger.Error("Failed to send alert email: ", err)
	}
}
