package viber

import (
	"bytes"
	"encoding/json"
	"strings"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

// errorMarkers must all appear in a body for it to be read as an error.
var errorMarkers = []string{"name", "message", "code", "status"}

// classify turns a gateway response into an error, or nil when the body is a
// success payload.
//
// Error bodies are recognised by substring search only, so a success body that
// happens to contain all four marker words is reported as an error.
func classify(op string, resp *transport.Response) error {
	if !common.IsSuccessStatus(resp.StatusCode) {
		return fromHTTPStatus(resp.StatusCode, resp.StatusText)
	}
	if !looksLikeError(resp.Body) {
		return nil
	}

	return decodeError(op, resp.Body)
}

// errorBody accepts code and status as JSON numbers or numeric strings.
type errorBody struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Code    json.Number `json:"code"`
	Status  json.Number `json:"status"`
}

func decodeError(op, body string) error {
	var eb errorBody
	if err := json.Unmarshal([]byte(body), &eb); err != nil {
		return common.NewProtocolError(op, "malformed error body", body, err)
	}
	code, err := optionalInt64(eb.Code)
	if err != nil {
		return common.NewProtocolError(op, "invalid error code "+eb.Code.String(), body, err)
	}
	status, err := optionalInt64(eb.Status)
	if err != nil {
		return common.NewProtocolError(op, "invalid error status "+eb.Status.String(), body, err)
	}
	return &Error{Name: eb.Name, Message: eb.Message, Code: int(code), Status: int(status)}
}

// optionalInt64 reads an absent number as 0.
func optionalInt64(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	return n.Int64()
}

func looksLikeError(body string) bool {
	for _, marker := range errorMarkers {
		if !strings.Contains(body, marker) {
			return false
		}
	}
	return true
}

type receiptBody struct {
	MessageID        *json.Number `json:"message_id"`
	Status           *json.Number `json:"status"`
	SMSMessageID     *json.Number `json:"sms_message_id"`
	SMSMessageStatus *json.Number `json:"sms_message_status"`
}

func decodeBody(op, body string) (receiptBody, error) {
	var rb receiptBody
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	if err := dec.Decode(&rb); err != nil {
		return receiptBody{}, common.NewProtocolError(op, "malformed json", body, err)
	}
	return rb, nil
}

func intField(op, body, key string, n *json.Number) (int64, error) {
	if n == nil {
		return 0, common.NewProtocolError(op, "missing "+key, body, nil)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, common.NewProtocolError(op, "invalid "+key+" "+n.String(), body, err)
	}
	return v, nil
}

func decodeMessageID(op, body string) (models.MessageID, error) {
	rb, err := decodeBody(op, body)
	if err != nil {
		return 0, err
	}
	id, err := intField(op, body, "message_id", rb.MessageID)
	if err != nil {
		return 0, err
	}
	return models.MessageID(id), nil
}

func decodeReceipt(op, body string) (models.ViberReceipt, error) {
	rb, err := decodeBody(op, body)
	if err != nil {
		return models.ViberReceipt{}, err
	}
	return receiptFrom(op, body, rb)
}

func receiptFrom(op, body string, rb receiptBody) (models.ViberReceipt, error) {
	id, err := intField(op, body, "message_id", rb.MessageID)
	if err != nil {
		return models.ViberReceipt{}, err
	}
	code, err := intField(op, body, "status", rb.Status)
	if err != nil {
		return models.ViberReceipt{}, err
	}
	status, _ := models.ParseViberStatus(int(code))
	return models.ViberReceipt{MessageID: models.MessageID(id), Status: status}, nil
}

// decodePlusReceipt fills the SMS leg only for the keys the gateway sent, so an
// absent leg stays nil while an unknown code resolves to SMSStatusNoMatch.
func decodePlusReceipt(op, body string) (models.ViberPlusSMSReceipt, error) {
	rb, err := decodeBody(op, body)
	if err != nil {
		return models.ViberPlusSMSReceipt{}, err
	}
	receipt, err := receiptFrom(op, body, rb)
	if err != nil {
		return models.ViberPlusSMSReceipt{}, err
	}

	out := models.ViberPlusSMSReceipt{ViberReceipt: receipt}
	if rb.SMSMessageID != nil {
		id, err := intField(op, body, "sms_message_id", rb.SMSMessageID)
		if err != nil {
			return models.ViberPlusSMSReceipt{}, err
		}
		smsID := models.MessageID(id)
		out.SMSMessageID = &smsID
	}
	if rb.SMSMessageStatus != nil {
		code, err := intField(op, body, "sms_message_status", rb.SMSMessageStatus)
		if err != nil {
			return models.ViberPlusSMSReceipt{}, err
		}
		status, _ := models.ParseSMSStatus(int(code))
		out.SMSStatus = &status
	}
	return out, nil
}
