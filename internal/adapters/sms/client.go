package sms

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

// DefaultBaseURL is the production SMS endpoint.
const DefaultBaseURL = "https://web.it-decision.com/ru/js"

const channel = "sms"

// Option modifies client behaviour.
type Option func(*Client)

// WithBaseURL points the client at a different gateway host. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTransport overrides the transport used to reach the gateway.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// Client sends SMS messages through the gateway. It holds only immutable
// credentials and is safe for concurrent use.
type Client struct {
	login     string
	password  string
	baseURL   string
	transport transport.Transport
	logger    zerolog.Logger
}

// NewClient constructs an SMS client. Credentials are passed to the gateway
// as is.
func NewClient(login, password string, logger zerolog.Logger, opts ...Option) *Client {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	c := &Client{
		login:    login,
		password: password,
		baseURL:  DefaultBaseURL,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.transport == nil {
		c.transport = transport.New(logger)
	}
	return c
}

// SendMessage submits msg and returns the id assigned by the gateway.
func (c *Client) SendMessage(ctx context.Context, msg models.SMSMessage) (models.MessageID, error) {
	const op = "send"

	dlr := "0"
	if msg.Delivery {
		dlr = "1"
	}
	params := url.Values{}
	params.Set("phone", msg.ReceiverPhone)
	params.Set("sender", msg.Sender)
	params.Set("text", msg.Text)
	params.Set("dlr", dlr)

	body, err := c.call(ctx, op, "/send", params)
	if err != nil {
		return 0, c.fail(op, err)
	}
	id, err := decodeMessageID(op, body)
	if err != nil {
		return 0, c.fail(op, err)
	}

	c.logger.Debug().
		Str("channel", channel).
		Str("operation", op).
		Int64("message_id", int64(id)).
		Bool("delivery_receipt", msg.Delivery).
		Msg("sms message accepted")
	return id, nil
}

// GetMessageStatus returns the delivery state of a message. A code missing
// from the status table yields models.SMSStatusNoMatch without an error.
func (c *Client) GetMessageStatus(ctx context.Context, id models.MessageID) (models.SMSStatus, error) {
	const op = "state"

	params := url.Values{}
	params.Set("msgid", strconv.FormatInt(int64(id), 10))

	body, err := c.call(ctx, op, "/state", params)
	if err != nil {
		return models.SMSStatusNoMatch, c.fail(op, err)
	}
	status, err := decodeStatus(op, body)
	if err != nil {
		return models.SMSStatusNoMatch, c.fail(op, err)
	}

	event := c.logger.Debug()
	if status == models.SMSStatusNoMatch {
		event = c.logger.Warn().Str("raw", common.TruncateRaw(body, common.DefaultRawBodyLimit))
	}
	event.
		Str("channel", channel).
		Str("operation", op).
		Int64("message_id", int64(id)).
		Stringer("status", status).
		Msg("sms status received")
	return status, nil
}

// GetBalance returns the account balance.
func (c *Client) GetBalance(ctx context.Context) (models.BalanceInfo, error) {
	const op = "balance"

	body, err := c.call(ctx, op, "/balance", url.Values{})
	if err != nil {
		return models.BalanceInfo{}, c.fail(op, err)
	}
	balance, err := decodeBalance(op, body)
	if err != nil {
		return models.BalanceInfo{}, c.fail(op, err)
	}

	c.logger.Debug().
		Str("channel", channel).
		Str("operation", op).
		Str("currency", balance.Currency).
		Msg("sms balance received")
	return balance, nil
}

// call performs one GET round trip and returns the body of a response that
// carries no error.
func (c *Client) call(ctx context.Context, op, path string, params url.Values) (string, error) {
	params.Set("login", c.login)
	params.Set("password", c.password)

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + path + "?" + params.Encode(),
	})
	if err != nil {
		return "", common.WrapTransport(op, err)
	}
	if err := classify(op, resp); err != nil {
		return "", err
	}
	return resp.Body, nil
}

func (c *Client) fail(op string, err error) error {
	event := c.logger.Warn().
		Str("channel", channel).
		Str("operation", op).
		Str("error_class", common.Classify(err)).
		Err(err)
	var smsErr *Error
	if errors.As(err, &smsErr) {
		event = event.Int("error_code", smsErr.Code.Code())
	}
	event.Msg("sms request failed")
	return err
}
