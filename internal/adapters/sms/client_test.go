package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

// newGateway starts a server answering every request with status and body.
func newGateway(t *testing.T, status int, body string) (*Client, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = r.URL.Query()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewClient("login", "password", zerolog.Nop(), WithBaseURL(srv.URL+"/ru/js")), captured
}

func TestSendMessageReturnsMessageID(t *testing.T) {
	t.Parallel()

	client, captured := newGateway(t, http.StatusOK, `["msgid","31885463"]`)

	id, err := client.SendMessage(context.Background(), models.SMSMessage{
		ReceiverPhone: "380505555555",
		Sender:        "380504444444",
		Text:          "Text message",
		Delivery:      true,
	})
	if err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if id != 31885463 {
		t.Fatalf("expected message id 31885463, got %d", id)
	}

	if captured.Method != http.MethodGet {
		t.Fatalf("expected GET, got %q", captured.Method)
	}
	if captured.Path != "/ru/js/send" {
		t.Fatalf("expected path /ru/js/send, got %q", captured.Path)
	}
	want := map[string]string{
		"login":    "login",
		"password": "password",
		"phone":    "380505555555",
		"sender":   "380504444444",
		"text":     "Text message",
		"dlr":      "1",
	}
	for key, value := range want {
		if got := captured.Query.Get(key); got != value {
			t.Fatalf("expected %s=%q, got %q", key, value, got)
		}
	}
}

func TestSendMessageEncodesQueryValues(t *testing.T) {
	t.Parallel()

	client, captured := newGateway(t, http.StatusOK, `["msgid","1"]`)

	text := "50% off & free #delivery?"
	if _, err := client.SendMessage(context.Background(), models.SMSMessage{ReceiverPhone: "+380 50", Text: text}); err != nil {
		t.Fatalf("SendMessage() error: %v", err)
	}
	if got := captured.Query.Get("text"); got != text {
		t.Fatalf("expected text %q to survive encoding, got %q", text, got)
	}
	if got := captured.Query.Get("phone"); got != "+380 50" {
		t.Fatalf("expected phone to survive encoding, got %q", got)
	}
	if got := captured.Query.Get("dlr"); got != "0" {
		t.Fatalf("expected dlr=0, got %q", got)
	}
}

func TestSendMessageReturnsGatewayError(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusOK, `["error",44]`)

	_, err := client.SendMessage(context.Background(), models.SMSMessage{})
	var smsErr *Error
	if !errors.As(err, &smsErr) {
		t.Fatalf("expected *sms.Error, got %T: %v", err, err)
	}
	if smsErr.Code != InvalidLoginOrPassword {
		t.Fatalf("expected InvalidLoginOrPassword, got %s", smsErr.Code)
	}
	if !errors.Is(err, common.ErrDomain) {
		t.Fatalf("expected domain error")
	}
}

func TestSendMessageReturnsGeneralError(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusNotFound, `Some general error text`)

	_, err := client.SendMessage(context.Background(), models.SMSMessage{})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var smsErr *Error
	if errors.As(err, &smsErr) {
		t.Fatalf("http failure must not be an sms error: %v", err)
	}
	if err.Error() != "request failed, response code: 404 (Not Found)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSendMessageUnexpectedKey(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusOK, `["status","2"]`)

	_, err := client.SendMessage(context.Background(), models.SMSMessage{})
	var perr *common.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected protocol error, got %T: %v", err, err)
	}
	if !strings.Contains(perr.Reason, "'status'") {
		t.Fatalf("expected offending key in reason, got %q", perr.Reason)
	}
	if errors.Is(err, common.ErrDomain) {
		t.Fatalf("protocol error must not be a domain error")
	}
}

func TestSendMessageUnknownErrorCode(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusOK, `["error",99]`)

	_, err := client.SendMessage(context.Background(), models.SMSMessage{})
	if !errors.Is(err, common.ErrProtocol) {
		t.Fatalf("expected protocol error for unknown code, got %v", err)
	}
	if errors.Is(err, common.ErrDomain) {
		t.Fatalf("unknown code must not be guessed into a domain error")
	}
}

func TestErrorCodesRoundTrip(t *testing.T) {
	t.Parallel()

	for _, code := range ErrorCodes() {
		code := code
		t.Run(code.String(), func(t *testing.T) {
			t.Parallel()

			client, _ := newGateway(t, http.StatusOK, fmt.Sprintf(`["error",%d]`, code.Code()))
			_, err := client.GetBalance(context.Background())
			var smsErr *Error
			if !errors.As(err, &smsErr) {
				t.Fatalf("expected *sms.Error, got %v", err)
			}
			if smsErr.Code != code {
				t.Fatalf("expected %s, got %s", code, smsErr.Code)
			}
		})
	}
}

func TestGetMessageStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want models.SMSStatus
	}{
		{name: "delivered", body: `["status","2"]`, want: models.SMSStatusDelivered},
		{name: "empty is unknown", body: `["status",""]`, want: models.SMSStatusUnknown},
		{name: "unmatched code", body: `["status","9"]`, want: models.SMSStatusNoMatch},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, captured := newGateway(t, http.StatusOK, tc.body)
			status, err := client.GetMessageStatus(context.Background(), 124)
			if err != nil {
				t.Fatalf("GetMessageStatus() error: %v", err)
			}
			if status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, status)
			}
			if captured.Path != "/ru/js/state" || captured.Query.Get("msgid") != "124" {
				t.Fatalf("unexpected request %s?%s", captured.Path, captured.Query.Encode())
			}
		})
	}
}

func TestGetMessageStatusRoundTripsEveryMember(t *testing.T) {
	t.Parallel()

	for _, want := range models.SMSStatuses() {
		client, _ := newGateway(t, http.StatusOK, fmt.Sprintf(`["status","%d"]`, want.Code()))
		got, err := client.GetMessageStatus(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetMessageStatus() error: %v", err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestGetMessageStatusReturnsGatewayError(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusOK, `["error",42]`)

	_, err := client.GetMessageStatus(context.Background(), 124)
	var smsErr *Error
	if !errors.As(err, &smsErr) || smsErr.Code != InvalidMessageID {
		t.Fatalf("expected InvalidMessageId error, got %v", err)
	}
}

func TestGetMessageStatusUnauthorized(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusUnauthorized, `Unauthorized`)

	_, err := client.GetMessageStatus(context.Background(), 124)
	var httpErr *common.HTTPStatusError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *common.HTTPStatusError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != 401 || httpErr.StatusText != "Unauthorized" {
		t.Fatalf("unexpected status %d %q", httpErr.StatusCode, httpErr.StatusText)
	}
	if errors.Is(err, common.ErrDomain) {
		t.Fatalf("sms http failure must not be a domain error")
	}
}

func TestGetBalance(t *testing.T) {
	t.Parallel()

	client, captured := newGateway(t, http.StatusOK, `["balance":"-791.8391870","credit":"1000","currency":"EUR"]`)

	balance, err := client.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if !balance.Balance.Equal(decimal.RequireFromString("-791.8391870")) {
		t.Fatalf("unexpected balance %s", balance.Balance)
	}
	if !balance.Credit.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected credit %s", balance.Credit)
	}
	if balance.Currency != "EUR" {
		t.Fatalf("unexpected currency %q", balance.Currency)
	}
	if captured.Path != "/ru/js/balance" || captured.Query.Get("login") != "login" {
		t.Fatalf("unexpected request %s?%s", captured.Path, captured.Query.Encode())
	}
}

func TestGetBalanceReturnsGatewayError(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusOK, `["error",44]`)

	_, err := client.GetBalance(context.Background())
	var smsErr *Error
	if !errors.As(err, &smsErr) || smsErr.Code != InvalidLoginOrPassword {
		t.Fatalf("expected InvalidLoginOrPassword error, got %v", err)
	}
}

func TestGetBalanceWithoutBalanceKeys(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`["status":"2"]`, `[]`} {
		client, _ := newGateway(t, http.StatusOK, body)

		balance, err := client.GetBalance(context.Background())
		if !errors.Is(err, common.ErrProtocol) {
			t.Fatalf("body %s: expected protocol error, got balance %+v err %v", body, balance, err)
		}
		if errors.Is(err, common.ErrDomain) {
			t.Fatalf("body %s: protocol error must not be a domain error", body)
		}
	}
}

func TestGetBalanceUnauthorized(t *testing.T) {
	t.Parallel()

	client, _ := newGateway(t, http.StatusUnauthorized, `Unauthorized`)

	_, err := client.GetBalance(context.Background())
	if !errors.Is(err, common.ErrHTTPStatus) || errors.Is(err, common.ErrDomain) {
		t.Fatalf("expected a non-domain http status error, got %v", err)
	}
}

func TestTransportFailureIsNeverDomainError(t *testing.T) {
	t.Parallel()

	dialErr := errors.New("dial tcp: connection refused")
	failing := transport.Func(func(context.Context, *transport.Request) (*transport.Response, error) {
		return nil, dialErr
	})
	client := NewClient("login", "password", zerolog.Nop(), WithTransport(failing))

	_, err := client.SendMessage(context.Background(), models.SMSMessage{})
	var te *common.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *common.TransportError, got %T: %v", err, err)
	}
	if !errors.Is(err, dialErr) {
		t.Fatalf("expected cause to be preserved")
	}
	if errors.Is(err, common.ErrDomain) {
		t.Fatalf("transport failure must not be a domain error")
	}
}

func TestClosedServerIsTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewClient("login", "password", zerolog.Nop(), WithBaseURL(base))
	_, err := client.GetBalance(context.Background())
	if common.Classify(err) != "transport" {
		t.Fatalf("expected transport class, got %q (%v)", common.Classify(err), err)
	}
}
