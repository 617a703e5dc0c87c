package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"ecuestre_go/services"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/sirupsen/logrus"
)

// linkCommand is the message a student sends to the bot to link their
// account, e.g. "vincular ana@mail.com".
const linkCommand = "vincular"

// LineWebhookHandler links students to their LINE accounts so voucher
// rejections can reach them.
type LineWebhookHandler struct {
	Bot    *linebot.Client
	secret string
	roster *services.RosterService
}

func NewLineWebhookHandler(line *services.LineMessagingService, secret string, roster *services.RosterService) *LineWebhookHandler {
	h := &LineWebhookHandler{secret: secret, roster: roster}
	if line.Enabled() {
		h.Bot = line.Bot
	}
	return h
}

// Handle receives webhook events
func (h *LineWebhookHandler) Handle(c *fiber.Ctx) error {
	if h.Bot == nil {
		logrus.Warn("LINE webhook called but the bot is not initialized")
		return c.SendStatus(fiber.StatusOK)
	}

	signature := c.Get("X-Line-Signature")
	if signature == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	if !validateSignature(h.secret, c.Body(), signature) {
		logrus.Warn("LINE webhook signature mismatch")
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	// Reply 200 first; LINE retries slow webhooks.
	body := append([]byte(nil), c.Body()...)
	go h.process(body)

	return c.SendStatus(fiber.StatusOK)
}

func (h *LineWebhookHandler) process(body []byte) {
	var webhook struct {
		Events []*linebot.Event `json:"events"`
	}
	if err := json.Unmarshal(body, &webhook); err != nil {
		logrus.WithError(err).Error("Failed to parse LINE webhook events")
		return
	}

	for _, event := range webhook.Events {
		if event.Source == nil || event.Source.UserID == "" {
			continue
		}
		switch event.Type {
		case linebot.EventTypeFollow:
			h.reply(event.ReplyToken, "¡Hola! Para recibir avisos de tus pagos envía: vincular tu@email.com")
		case linebot.EventTypeUnfollow:
			if _, err := h.roster.UnlinkLine(event.Source.UserID); err != nil {
				logrus.WithError(err).Error("Failed to unlink LINE account")
			}
		case linebot.EventTypeMessage:
			msg, ok := event.Message.(*linebot.TextMessage)
			if !ok {
				continue
			}
			email, ok := parseLinkCommand(msg.Text)
			if !ok {
				continue
			}
			h.reply(event.ReplyToken, h.link(email, event.Source.UserID))
		}
	}
}

func (h *LineWebhookHandler) link(email, lineID string) string {
	student, err := h.roster.LinkLine(email, lineID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return err.Error()
		}
		logrus.WithError(err).Error("Failed to link LINE account")
		return "No pudimos vincular tu cuenta, intenta más tarde"
	}
	logrus.WithField("alumno_id", student.ID).Info("LINE account linked")
	return "Listo " + student.Nombre + ", tu cuenta quedó vinculada"
}

func (h *LineWebhookHandler) reply(token, text string) {
	if token == "" {
		return
	}
	if _, err := h.Bot.ReplyMessage(token, linebot.NewTextMessage(text)).Do(); err != nil {
		logrus.WithError(err).Warn("Failed to reply LINE message")
	}
}

// parseLinkCommand extracts the email of a "vincular <email>" message.
func parseLinkCommand(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 || !strings.EqualFold(fields[0], linkCommand) {
		return "", false
	}
	if !strings.Contains(fields[1], "@") {
		return "", false
	}
	return fields[1], true
}

func computeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func validateSignature(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(computeSignature(secret, body)))
}
