package models

// MessageID identifies a message accepted by the gateway. It is assigned by the
// vendor and used as the key for status lookups.
type MessageID int64

// SMSMessage models an outbound SMS.
type SMSMessage struct {
	// ReceiverPhone is the destination MSISDN.
	ReceiverPhone string
	// Sender is a phone number including country code or an alphanumeric id.
	Sender string
	Text   string
	// Delivery requests a delivery receipt that can later be fetched by id.
	Delivery bool
}

// ViberMessageType selects the Viber message layout.
type ViberMessageType int

// Supported Viber message layouts.
const (
	ViberTypeTextOnly              ViberMessageType = 106
	ViberTypeTextImageButton       ViberMessageType = 108
	ViberTypeTextOnlyTwoWay        ViberMessageType = 206
	ViberTypeTextImageButtonTwoWay ViberMessageType = 208
)

// ViberSourceType tells the gateway whether the traffic is marketing or service.
type ViberSourceType int

// Supported Viber source types.
const (
	ViberSourcePromotional   ViberSourceType = 1
	ViberSourceTransactional ViberSourceType = 2
)

// ViberMessage models an outbound Viber message. Zero values of the optional
// fields are sent to the gateway as null.
type ViberMessage struct {
	Sender   string
	Receiver string
	Type     ViberMessageType
	Text     string

	ImageURL      string
	ButtonCaption string
	ButtonAction  string
	SourceType    ViberSourceType
	CallbackURL   string
	// ValidityPeriod is the message lifetime in seconds.
	ValidityPeriod int
}

// ViberPlusSMSMessage is a Viber message with an SMS fallback text, delivered
// over SMS when the Viber leg fails.
type ViberPlusSMSMessage struct {
	ViberMessage
	SMSText string
}
