package message

import "time"

// Embed is a rich rendering hint for channels that support card-style
// output (title, body, thumbnail, footer). Channels that only support
// plain text flatten it via Flatten.
type Embed struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Footer      string    `json:"footer,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}

// IsZero reports whether the embed carries no content.
func (e *Embed) IsZero() bool {
	return e == nil || (e.Title == "" && e.Description == "" && e.Image == "" && e.Footer == "")
}

// Flatten renders the embed as plain text for channels without card support.
func (e *Embed) Flatten() string {
	if e.IsZero() {
		return ""
	}
	out := e.Title
	if e.Description != "" {
		out += "\n" + e.Description
	}
	if e.Image != "" {
		out += "\n" + e.Image
	}
	if e.Footer != "" {
		out += "\n" + e.Footer
	}
	return out
}

// OutboundMessage represents a message to be sent through a channel.
type OutboundMessage struct {
	Channel string `json:"channel"`
	Chat    Chat   `json:"chat"`
	Text    string `json:"text,omitempty"`
	Embed   *Embed `json:"embed,omitempty"`
}

// NewTextMessage creates an outbound plain-text message.
func NewTextMessage(channel string, chat Chat, text string) OutboundMessage {
	return OutboundMessage{Channel: channel, Chat: chat, Text: text}
}

// NewEmbedMessage creates an outbound message carrying an embed.
func NewEmbedMessage(channel string, chat Chat, embed Embed) OutboundMessage {
	return OutboundMessage{Channel: channel, Chat: chat, Embed: &embed}
}

// TextContent returns the plain-text rendering of the message: the text
// field if set, otherwise the flattened embed.
func (m *OutboundMessage) TextContent() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Embed.Flatten()
}
