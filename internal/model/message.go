package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ISOLayout is the wire format of scheduling dates: UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// MessageType is the channel a scheduled message is meant for.
type MessageType string

const (
	MessageTypeEmail    MessageType = "EMAIL"
	MessageTypeSMS      MessageType = "SMS"
	MessageTypePush     MessageType = "PUSH"
	MessageTypeWhatsApp MessageType = "WHATSAPP"
)

// MessageTypes lists every accepted channel.
var MessageTypes = []MessageType{MessageTypeEmail, MessageTypeSMS, MessageTypePush, MessageTypeWhatsApp}

// Valid reports whether t is one of the known channels.
func (t MessageType) Valid() bool {
	for _, known := range MessageTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ScheduledMessage represents the data stored in PostgreSQL about a scheduling request.
type ScheduledMessage struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	MessageType    MessageType `db:"message_type" json:"messageType"`
	Message        string      `db:"message" json:"message"`
	Recipient      string      `db:"recipient" json:"recipient"`
	SchedulingDate time.Time   `db:"scheduling_date" json:"schedulingDate"`
	Scheduled      bool        `db:"scheduled" json:"scheduled"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

// MarshalJSON renders SchedulingDate in ISOLayout so it round-trips with the submitted value.
func (m ScheduledMessage) MarshalJSON() ([]byte, error) {
	type alias ScheduledMessage
	return json.Marshal(struct {
		alias
		SchedulingDate string `json:"schedulingDate"`
	}{
		alias:          alias(m),
		SchedulingDate: FormatISO(m.SchedulingDate),
	})
}

// Tuple returns the natural uniqueness key of the message.
func (m ScheduledMessage) Tuple() Tuple {
	return Tuple{
		Recipient:      m.Recipient,
		Message:        m.Message,
		MessageType:    m.MessageType,
		SchedulingDate: m.SchedulingDate,
	}
}

// Tuple is the (recipient, message, messageType, schedulingDate) key used to detect duplicates.
type Tuple struct {
	Recipient      string
	Message        string
	MessageType    MessageType
	SchedulingDate time.Time
}

// ScheduleStatus is the public projection returned by status reads and updates.
type ScheduleStatus struct {
	ID        uuid.UUID `json:"id"`
	Scheduled bool      `json:"scheduled"`
}

// Status projects the message down to its id and flag.
func (m ScheduledMessage) Status() ScheduleStatus {
	return ScheduleStatus{ID: m.ID, Scheduled: m.Scheduled}
}

// FormatISO formats t in ISOLayout.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}
