package telegram

import (
	"fmt"
	"strconv"
	"time"

	"github.com/faqbot/faqbot/pkg/message"
)

// convertInbound transforms a Telegram Update into a platform-agnostic
// InboundMessage. Updates without a text message are skipped.
func convertInbound(update *Update, channelName string) (message.InboundMessage, error) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return message.InboundMessage{}, fmt.Errorf("telegram: update %d contains no text message", update.UpdateID)
	}

	return message.InboundMessage{
		ID:        strconv.Itoa(msg.MessageID),
		Timestamp: time.Unix(int64(msg.Date), 0),
		Channel:   channelName,
		Sender:    convertSender(msg.From),
		Chat:      convertChat(msg.Chat),
		Text:      msg.Text,
	}, nil
}

// convertSender maps a Telegram User to a platform-agnostic Sender.
func convertSender(user *User) message.Sender {
	if user == nil {
		return message.Sender{}
	}
	displayName := user.FirstName
	if user.LastName != "" {
		displayName += " " + user.LastName
	}
	return message.Sender{
		ID:          strconv.FormatInt(user.ID, 10),
		Username:    user.Username,
		DisplayName: displayName,
	}
}

// convertChat maps a Telegram Chat to a platform-agnostic Chat.
func convertChat(chat Chat) message.Chat {
	chatType := message.ChatGroup
	if chat.Type == "private" {
		chatType = message.ChatDM
	}
	return message.Chat{
		ID:    strconv.FormatInt(chat.ID, 10),
		Type:  chatType,
		Title: chat.Title,
	}
}

// buildOutbound converts an OutboundMessage into the Bot API request to
// issue: sendPhoto when the embed carries an image, sendMessage otherwise.
// Text beyond maxLen is truncated at a rune boundary.
func buildOutbound(msg message.OutboundMessage, maxLen int) (photo *SendPhotoRequest, text *SendMessageRequest, err error) {
	chatID, err := strconv.ParseInt(msg.Chat.ID, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram: chat ID %q is not numeric: %w", msg.Chat.ID, err)
	}

	body := msg.Text
	if !msg.Embed.IsZero() {
		flat := flattenWithoutImage(msg.Embed)
		if body != "" {
			body += "\n"
		}
		body += flat

		if msg.Embed.Image != "" {
			return &SendPhotoRequest{
				ChatID:  chatID,
				Photo:   msg.Embed.Image,
				Caption: truncate(body, maxLen),
			}, nil, nil
		}
	}

	return nil, &SendMessageRequest{
		ChatID: chatID,
		Text:   truncate(body, maxLen),
	}, nil
}

// flattenWithoutImage renders an embed as plain text, leaving the image
// out since sendPhoto carries it natively.
func flattenWithoutImage(e *message.Embed) string {
	out := e.Title
	if e.Description != "" {
		out += "\n" + e.Description
	}
	if e.Footer != "" {
		out += "\n" + e.Footer
	}
	return out
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
