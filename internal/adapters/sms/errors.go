package sms

import (
	"fmt"
	"strconv"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
)

// ErrorCode is an error reported by the SMS gateway in a ["error",code] body.
type ErrorCode int

// SMS gateway error codes.
const (
	InvalidNumber          ErrorCode = 40
	IncorrectSender        ErrorCode = 41
	InvalidMessageID       ErrorCode = 42
	IncorrectJSON          ErrorCode = 43
	InvalidLoginOrPassword ErrorCode = 44
	UserLocked             ErrorCode = 45
	EmptyText              ErrorCode = 46
	EmptyLogin             ErrorCode = 47
	EmptyPassword          ErrorCode = 48
	NotEnoughMoney         ErrorCode = 49
	AuthorizationError     ErrorCode = 50
	InvalidPhoneNumber     ErrorCode = 51
)

var errorCodeNames = map[ErrorCode]string{
	InvalidNumber:          "InvalidNumber",
	IncorrectSender:        "IncorrectSender",
	InvalidMessageID:       "InvalidMessageId",
	IncorrectJSON:          "IncorrectJson",
	InvalidLoginOrPassword: "InvalidLoginOrPassword",
	UserLocked:             "UserLocked",
	EmptyText:              "EmptyText",
	EmptyLogin:             "EmptyLogin",
	EmptyPassword:          "EmptyPassword",
	NotEnoughMoney:         "NotEnoughMoney",
	AuthorizationError:     "AuthorizationError",
	InvalidPhoneNumber:     "InvalidPhoneNumber",
}

// ErrorCodes lists every known SMS error code.
func ErrorCodes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(errorCodeNames))
	for code := InvalidNumber; code <= InvalidPhoneNumber; code++ {
		codes = append(codes, code)
	}
	return codes
}

// ParseErrorCode resolves a wire code. ok is false for codes outside the table.
func ParseErrorCode(code int) (ErrorCode, bool) {
	c := ErrorCode(code)
	_, ok := errorCodeNames[c]
	return c, ok
}

// Code returns the wire code.
func (c ErrorCode) Code() int { return int(c) }

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
}

// Error is a business error reported by the SMS gateway.
type Error struct {
	Code ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("sms error: %s (%d)", e.Code, e.Code.Code())
}

func (e *Error) Is(target error) bool { return target == common.ErrDomain }
