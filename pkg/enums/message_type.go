package enums

import "fmt"

// MessageType categorizes a buyer message thread.
type MessageType string

const (
	MessageTypeGeneral   MessageType = "general"
	MessageTypeFreshness MessageType = "freshness"
	MessageTypeDelivery  MessageType = "delivery"
	MessageTypeProduct   MessageType = "product"
	MessageTypeOther     MessageType = "other"
)

var validMessageTypes = []MessageType{
	MessageTypeGeneral,
	MessageTypeFreshness,
	MessageTypeDelivery,
	MessageTypeProduct,
	MessageTypeOther,
}

// String implements fmt.Stringer.
func (t MessageType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known MessageType.
func (t MessageType) IsValid() bool {
	for _, candidate := range validMessageTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMessageType converts raw input into a MessageType.
func ParseMessageType(value string) (MessageType, error) {
	for _, candidate := range validMessageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message type %q", value)
}
