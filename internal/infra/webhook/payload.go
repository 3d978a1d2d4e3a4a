package webhook

import (
	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
)

// Payload is the JSON body posted to the incoming webhook.
type Payload struct {
	Text        string       `json:"text"`
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is a single colored attachment on the wire.
type Attachment struct {
	Fallback  string  `json:"fallback"`
	Color     string  `json:"color"`
	Title     string  `json:"title"`
	TitleLink string  `json:"title_link,omitempty"`
	Text      string  `json:"text,omitempty"`
	Fields    []Field `json:"fields"`
	Ts        int64   `json:"ts"`
	// MrkdwnIn asks the client to render markup in the attachment text.
	MrkdwnIn []string `json:"mrkdwn_in,omitempty"`
}

// Field is a name/value row inside an attachment.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

var semanticColors = map[entity.Color]string{
	entity.ColorGreen:  "good",
	entity.ColorYellow: "warning",
	entity.ColorRed:    "danger",
}

var hexColors = map[entity.Color]string{
	entity.ColorGreen:  "#2eb886",
	entity.ColorYellow: "#daa038",
	entity.ColorRed:    "#a30200",
}

// wireColor maps a palette color to its wire form. Unknown colors fall back
// to the neutral warning color.
func wireColor(c entity.Color, style config.ColorStyle) string {
	table := semanticColors
	if style == config.ColorStyleHex {
		table = hexColors
	}
	if v, ok := table[c]; ok {
		return v
	}
	return table[entity.ColorYellow]
}

// BuildPayload converts a formatted message into the webhook payload.
func BuildPayload(msg entity.OutboundMessage, cfg *config.Config) Payload {
	attachments := make([]Attachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		fields := make([]Field, 0, len(a.Fields))
		for _, f := range a.Fields {
			fields = append(fields, Field{Title: f.Name, Value: f.Value, Short: f.Short})
		}
		att := Attachment{
			Fallback:  a.Fallback,
			Color:     wireColor(a.Color, cfg.Webhook.ColorStyle),
			Title:     a.Title,
			TitleLink: a.TitleLink,
			Text:      a.Text,
			Fields:    fields,
			Ts:        a.Timestamp,
		}
		if a.Text != "" {
			att.MrkdwnIn = []string{"text"}
		}
		attachments = append(attachments, att)
	}

	return Payload{
		Text:        msg.Text,
		Channel:     cfg.Webhook.Channel,
		Username:    cfg.SenderName(),
		IconEmoji:   cfg.Webhook.IconEmoji,
		Attachments: attachments,
	}
}
