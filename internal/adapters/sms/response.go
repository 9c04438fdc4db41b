package sms

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

const (
	errorKey     = "error"
	messageIDKey = "msgid"
	statusKey    = "status"
	balanceKey   = "balance"
	creditKey    = "credit"
	currencyKey  = "currency"
)

// quotedNumber matches a double quoted decimal number such as "-791.8391870".
var quotedNumber = regexp.MustCompile(`"([-+]?[0-9]*\.?[0-9]+)"`)

// classify turns a gateway response into an error, or nil when the body
// should be handed to a decoder. The gateway answers with pseudo-arrays like
// ["msgid","31885463"] or ["error",44].
func classify(op string, resp *transport.Response) error {
	if !common.IsSuccessStatus(resp.StatusCode) {
		return &common.HTTPStatusError{StatusCode: resp.StatusCode, StatusText: resp.StatusText}
	}

	elems := splitList(resp.Body)
	if elems[0] != errorKey {
		return nil
	}
	if len(elems) < 2 {
		return common.NewProtocolError(op, "error response without a code", resp.Body, nil)
	}
	code, err := strconv.Atoi(elems[1])
	if err != nil {
		return common.NewProtocolError(op, fmt.Sprintf("invalid error code %q", elems[1]), resp.Body, err)
	}
	errorCode, ok := ParseErrorCode(code)
	if !ok {
		return common.NewProtocolError(op, fmt.Sprintf("unknown error code %d", code), resp.Body, nil)
	}
	return &Error{Code: errorCode}
}

// splitList strips the brackets and quotes of a pseudo-array and returns its
// elements. The result always has at least one element.
func splitList(body string) []string {
	inner := strings.TrimSpace(body)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")

	elems := strings.Split(inner, ",")
	for i := range elems {
		elems[i] = strings.TrimSpace(strings.ReplaceAll(elems[i], `"`, ""))
	}
	return elems
}

// valueOf returns the value of a ["key","value"] body, failing when the body
// carries a different key.
func valueOf(op, body, key string) (string, error) {
	elems := splitList(body)
	if elems[0] != key {
		return "", common.NewProtocolError(op, fmt.Sprintf("unknown key '%s'", elems[0]), body, nil)
	}
	if len(elems) < 2 {
		return "", common.NewProtocolError(op, fmt.Sprintf("missing value for key '%s'", key), body, nil)
	}
	return elems[1], nil
}

func decodeMessageID(op, body string) (models.MessageID, error) {
	value, err := valueOf(op, body, messageIDKey)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, common.NewProtocolError(op, fmt.Sprintf("invalid message id %q", value), body, err)
	}
	return models.MessageID(id), nil
}

// decodeStatus maps an empty status to Unknown and a code outside the table to
// NoMatch.
func decodeStatus(op, body string) (models.SMSStatus, error) {
	value, err := valueOf(op, body, statusKey)
	if err != nil {
		return models.SMSStatusNoMatch, err
	}
	if value == "" {
		return models.SMSStatusUnknown, nil
	}
	code, err := strconv.Atoi(value)
	if err != nil {
		return models.SMSStatusNoMatch, common.NewProtocolError(op, fmt.Sprintf("invalid status %q", value), body, err)
	}
	status, _ := models.ParseSMSStatus(code)
	return status, nil
}

// decodeBalance parses ["balance":"-791.8391870","credit":"1000","currency":"EUR"]
// by rewriting it into a JSON object with unquoted numbers. Every key must be
// present.
func decodeBalance(op, body string) (models.BalanceInfo, error) {
	content := strings.TrimSpace(body)
	content = strings.Replace(content, "[", "{", 1)
	content = strings.Replace(content, "]", "}", 1)
	content = quotedNumber.ReplaceAllString(content, "$1")

	var raw struct {
		Balance  *decimal.Decimal `json:"balance"`
		Credit   *decimal.Decimal `json:"credit"`
		Currency *string          `json:"currency"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.BalanceInfo{}, common.NewProtocolError(op, "malformed balance", body, err)
	}
	switch {
	case raw.Balance == nil:
		return models.BalanceInfo{}, missingKey(op, body, balanceKey)
	case raw.Credit == nil:
		return models.BalanceInfo{}, missingKey(op, body, creditKey)
	case raw.Currency == nil:
		return models.BalanceInfo{}, missingKey(op, body, currencyKey)
	}
	return models.BalanceInfo{Balance: *raw.Balance, Credit: *raw.Credit, Currency: *raw.Currency}, nil
}

func missingKey(op, body, key string) error {
	return common.NewProtocolError(op, fmt.Sprintf("missing key '%s'", key), body, nil)
}
