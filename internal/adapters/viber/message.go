package viber

import (
	"encoding/json"
	"fmt"

	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
)

// payload is the wire form of a Viber message. Optional keys are always
// present and carry null when unset.
type payload struct {
	SourceAddr      string  `json:"source_addr"`
	DestinationAddr string  `json:"destination_addr"`
	MessageType     *int    `json:"message_type"`
	Text            string  `json:"text"`
	Image           *string `json:"image"`
	ButtonCaption   *string `json:"button_caption"`
	ButtonAction    *string `json:"button_action"`
	SourceType      *int    `json:"source_type"`
	CallbackURL     *string `json:"callback_url"`
	ValidityPeriod  *int    `json:"validity_period"`
}

type plusPayload struct {
	payload
	TextSMS *string `json:"text_sms"`
}

type statusQuery struct {
	MessageID models.MessageID `json:"message_id"`
}

func newPayload(m models.ViberMessage) payload {
	return payload{
		SourceAddr:      m.Sender,
		DestinationAddr: m.Receiver,
		MessageType:     optionalInt(int(m.Type)),
		Text:            m.Text,
		Image:           optionalString(m.ImageURL),
		ButtonCaption:   optionalString(m.ButtonCaption),
		ButtonAction:    optionalString(m.ButtonAction),
		SourceType:      optionalInt(int(m.SourceType)),
		CallbackURL:     optionalString(m.CallbackURL),
		ValidityPeriod:  optionalInt(m.ValidityPeriod),
	}
}

// encodeMessage renders either message variant. Only the SMS fallback variant
// carries the text_sms key.
func encodeMessage(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case models.ViberMessage:
		return json.Marshal(newPayload(m))
	case models.ViberPlusSMSMessage:
		return json.Marshal(plusPayload{
			payload: newPayload(m.ViberMessage),
			TextSMS: optionalString(m.SMSText),
		})
	default:
		return nil, fmt.Errorf("unsupported viber message %T", msg)
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
