package models

import (
	"fmt"
	"strings"
)

// AlertLevel classifies how urgent an operational alert is.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// Alert is an operational event worth telling a human about, such as the
// pool running dry or a replenishment batch failing to insert.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// String renders the alert as a single human-readable message line.
func (a *Alert) String() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(a.Level)), a.Title, a.Message)
}

type AlertService interface {
	SendAlert(alert *Alert)
}
