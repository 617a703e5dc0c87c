package services

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/sirupsen/logrus"
)

// StudentNotifier pushes a short text message to a student.
type StudentNotifier interface {
	Notify(lineID, message string) error
}

// LineMessagingService wraps the LINE Messaging API client
type LineMessagingService struct {
	Bot *linebot.Client
}

// NewLineMessagingService returns a disabled service when credentials are missing.
func NewLineMessagingService(channelSecret, channelToken string) *LineMessagingService {
	if channelSecret == "" || channelToken == "" {
		logrus.Warn("LINE Messaging API disabled: missing LINE_CHANNEL_SECRET or LINE_CHANNEL_ACCESS_TOKEN")
		return &LineMessagingService{Bot: nil}
	}

	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		logrus.WithError(err).Error("Cannot create LINE bot client")
		return &LineMessagingService{Bot: nil}
	}

	return &LineMessagingService{Bot: bot}
}

func (s *LineMessagingService) Enabled() bool {
	return s != nil && s.Bot != nil
}

// Notify pushes a text message to a LINE user
func (s *LineMessagingService) Notify(lineID string, message string) error {
	if !s.Enabled() {
		return fmt.Errorf("LINE Bot client is not initialized")
	}

	_, err := s.Bot.PushMessage(lineID, linebot.NewTextMessage(message)).Do()
	if err != nil {
		return fmt.Errorf("LINE Messaging API failed: %w", err)
	}
	return nil
}

func rejectionNotice(mes, anio int, observaciones string) string {
	return fmt.Sprintf("Tu comprobante de pago de %02d/%d fue rechazado.\nMotivo: %s\nPor favor sube un nuevo comprobante.", mes, anio, observaciones)
}
