package notificator

import (
	"context"

	"fmt"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/logger"
)

// TelegramAlerter delivers operational alerts to a fixed ops chat and
// answers /status queries with the current pool state.
type TelegramAlerter struct {
	logger *logger.Logger
	bot    *bot.Bot
	chatID string

	db models.Repository
}

func NewTelegramAlerter(logger *logger.Logger, token, chatID string, db models.Repository) (*TelegramAlerter, error) {
	alerter := &TelegramAlerter{
		logger: logger,
		chatID: chatID,
		db:     db,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(alerter.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %s", err)
	}
	go b.Start(context.Background())
	alerter.bot = b

	return alerter, nil
}

func (t *TelegramAlerter) SendAlert(alert *models.Alert) {
	params := &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   alert.String(),
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send alert: ", err)
	}
}

func (t *TelegramAlerter) sendText(chatID, message string) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send message: ", err)
	}
}

func (t *TelegramAlerter) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update: ", update.Message.From.Username, " ", update.Message.Text)

	if update.Message.Text == "/status" {
		unclaimed, err := t.db.CountUnclaimedCoupons()
		if err != nil {
			t.logger.Error("Failed to count unclaimed coupons: ", err)
			t.sendText(fmt.Sprint(update.Message.Chat.ID), "Pool status unavailable, storage error.")
			return
		}
		maxSeq, err := t.db.MaxSequenceNumber()
		if err != nil {
			t.logger.Error("Failed to get max sequence number: ", err)
			t.sendText(fmt.Sprint(update.Message.Chat.ID), "Pool status unavailable, storage error.")
			return
		}
		t.sendText(fmt.Sprint(update.Message.Chat.ID),
			fmt.Sprintf("Coupon pool: %d unclaimed, highest sequence %d", unclaimed, maxSeq))
	}
}
