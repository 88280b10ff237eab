// Package whatsapp contains the WhatsApp Business Cloud API boundary: the
// webhook payload model, decoded once into typed message content, and a small
// client for the outbound Graph API calls the backend makes.
package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ObjectBusinessAccount is the only webhook object type the backend handles.
const ObjectBusinessAccount = "whatsapp_business_account"

// FieldMessages is the change field that carries messages and statuses.
const FieldMessages = "messages"

// Payload is the top-level body of a webhook POST.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the changes reported for one business account.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change is a single field update inside an entry.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue carries the business phone metadata and the inbound messages
// and delivery statuses.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the business phone that received the event.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender profile WhatsApp attaches to inbound messages.
type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Status is a delivery status callback for a message the business sent.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// Message is one inbound message. Content is the decoded payload; Raw keeps
// the original JSON object.
type Message struct {
	ID        string
	From      string
	Timestamp string
	Type      string
	Content   Content
	Raw       json.RawMessage
}

// Time converts the epoch-seconds timestamp to UTC. An unparsable value
// yields the current time.
func (m Message) Time() time.Time {
	sec, err := strconv.ParseInt(m.Timestamp, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(sec, 0).UTC()
}

type mediaWire struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
}

type messageWire struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`

	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Image    *mediaWire `json:"image"`
	Audio    *mediaWire `json:"audio"`
	Video    *mediaWire `json:"video"`
	Document *mediaWire `json:"document"`
	Location *struct {
		Latitude  json.Number `json:"latitude"`
		Longitude json.Number `json:"longitude"`
		Name      string      `json:"name"`
		Address   string      `json:"address"`
	} `json:"location"`
	Contacts []json.RawMessage `json:"contacts"`
	Sticker  *mediaWire        `json:"sticker"`
	Reaction *struct {
		MessageID string `json:"message_id"`
		Emoji     string `json:"emoji"`
	} `json:"reaction"`
}

// UnmarshalJSON decodes the message and resolves its content variant.
// A non-empty text body wins; otherwise the first present media or
// structured block, checked in a fixed order, decides the variant.
func (m *Message) UnmarshalJSON(b []byte) error {
	var w messageWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*m = Message{
		ID:        w.ID,
		From:      w.From,
		Timestamp: w.Timestamp,
		Type:      w.Type,
		Raw:       append(json.RawMessage(nil), b...),
	}

	switch {
	case w.Text != nil && w.Text.Body != "":
		m.Content = Text{Body: w.Text.Body}
	case w.Image != nil:
		m.Content = w.Image.media(MediaImage)
	case w.Audio != nil:
		m.Content = w.Audio.media(MediaAudio)
	case w.Video != nil:
		m.Content = w.Video.media(MediaVideo)
	case w.Document != nil:
		m.Content = w.Document.media(MediaDocument)
	case w.Location != nil:
		m.Content = Location{
			Latitude:  w.Location.Latitude,
			Longitude: w.Location.Longitude,
			Name:      w.Location.Name,
			Address:   w.Location.Address,
		}
	case w.Contacts != nil:
		m.Content = Contacts{Count: len(w.Contacts)}
	case w.Sticker != nil:
		m.Content = Sticker{ID: w.Sticker.ID}
	case w.Reaction != nil:
		m.Content = Reaction{MessageID: w.Reaction.MessageID, Emoji: w.Reaction.Emoji}
	default:
		m.Content = Unknown{Type: w.Type}
	}
	return nil
}

// MarshalJSON returns the original message JSON.
func (m Message) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(messageWire{ID: m.ID, From: m.From, Timestamp: m.Timestamp, Type: m.Type})
}

func (w *mediaWire) media(kind MediaKind) Media {
	return Media{Kind: kind, ID: w.ID, MimeType: w.MimeType, Caption: w.Caption}
}

// Content is the decoded body of an inbound message. The concrete type is
// one of Text, Media, Location, Contacts, Sticker, Reaction or Unknown.
type Content interface {
	isContent()
}

// Text is a plain text message.
type Text struct {
	Body string
}

// MediaKind distinguishes media attachments.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaAudio    MediaKind = "audio"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// Media is an image, audio, video or document attachment.
type Media struct {
	Kind     MediaKind
	ID       string
	MimeType string
	Caption  string
}

// Location is a shared map pin. Coordinates keep their literal JSON text.
type Location struct {
	Latitude  json.Number
	Longitude json.Number
	Name      string
	Address   string
}

// Contacts is one or more shared contact cards.
type Contacts struct {
	Count int
}

// Sticker is a sticker message.
type Sticker struct {
	ID string
}

// Reaction is an emoji reaction to an earlier message.
type Reaction struct {
	MessageID string
	Emoji     string
}

// Unknown is any message type the backend does not model.
type Unknown struct {
	Type string
}

func (Text) isContent()     {}
func (Media) isContent()    {}
func (Location) isContent() {}
func (Contacts) isContent() {}
func (Sticker) isContent()  {}
func (Reaction) isContent() {}
func (Unknown) isContent()  {}

// Render returns the text stored in chat history for c. Non-text content
// is replaced by a bracketed placeholder.
func Render(c Content) string {
	switch v := c.(type) {
	case Text:
		return v.Body
	case Media:
		switch v.Kind {
		case MediaImage:
			return "[Image message]"
		case MediaAudio:
			return "[Audio message]"
		case MediaVideo:
			return "[Video message]"
		case MediaDocument:
			return "[Document message]"
		}
	case Location:
		return fmt.Sprintf("[Location: Lat %s, Long %s]", v.Latitude, v.Longitude)
	case Contacts:
		return "[Contact information]"
	case Sticker:
		return "[Sticker]"
	case Reaction:
		return fmt.Sprintf("[Reaction: %s]", v.Emoji)
	}
	return "[Unknown message type]"
}
