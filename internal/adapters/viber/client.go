package viber

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

// DefaultBaseURL is the production Viber endpoint.
const DefaultBaseURL = "https://web.it-decision.com/v1/api"

const (
	sendPath   = "/send-viber"
	statusPath = "/receive-viber"
)

// Variant names the message shape a client works with.
type Variant string

const (
	VariantViber        Variant = "viber"
	VariantViberPlusSMS Variant = "viber_plus_sms"
)

// Outbound is the set of message shapes a Viber client can send.
type Outbound interface {
	models.ViberMessage | models.ViberPlusSMSMessage
}

type (
	// ViberClient sends plain Viber messages.
	ViberClient = Client[models.ViberMessage, models.ViberReceipt]
	// PlusSMSClient sends Viber messages with an SMS fallback.
	PlusSMSClient = Client[models.ViberPlusSMSMessage, models.ViberPlusSMSReceipt]
)

type settings struct {
	baseURL   string
	transport transport.Transport
}

// Option modifies client behaviour.
type Option func(*settings)

// WithBaseURL points the client at a different gateway host. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			s.baseURL = baseURL
		}
	}
}

// WithTransport overrides the transport used to reach the gateway.
func WithTransport(t transport.Transport) Option {
	return func(s *settings) {
		if t != nil {
			s.transport = t
		}
	}
}

// Client talks to the Viber gateway. M is the outbound message shape and R the
// receipt returned by status lookups; the variant picks the receipt decoder.
// A Client is immutable and safe for concurrent use.
type Client[M Outbound, R any] struct {
	variant       Variant
	authorization string
	baseURL       string
	transport     transport.Transport
	logger        zerolog.Logger
	decode        func(op, body string) (R, error)
}

// NewClient constructs a client for plain Viber messages.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) *ViberClient {
	return newClient[models.ViberMessage](apiKey, VariantViber, decodeReceipt, logger, opts)
}

// NewPlusSMSClient constructs a client for Viber messages with an SMS fallback.
func NewPlusSMSClient(apiKey string, logger zerolog.Logger, opts ...Option) *PlusSMSClient {
	return newClient[models.ViberPlusSMSMessage](apiKey, VariantViberPlusSMS, decodePlusReceipt, logger, opts)
}

func newClient[M Outbound, R any](apiKey string, variant Variant, decode func(op, body string) (R, error), logger zerolog.Logger, opts []Option) *Client[M, R] {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	s := settings{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.transport == nil {
		s.transport = transport.New(logger)
	}
	return &Client[M, R]{
		variant:       variant,
		authorization: "Basic " + base64.StdEncoding.EncodeToString([]byte(apiKey+":")),
		baseURL:       s.baseURL,
		transport:     s.transport,
		logger:        logger,
		decode:        decode,
	}
}

// Variant reports which message shape the client sends.
func (c *Client[M, R]) Variant() Variant { return c.variant }

// SendMessage submits msg and returns the id assigned by the gateway.
func (c *Client[M, R]) SendMessage(ctx context.Context, msg M) (models.MessageID, error) {
	const op = "send"

	payload, err := encodeMessage(any(msg))
	if err != nil {
		return 0, c.fail(op, fmt.Errorf("encode message: %w", err))
	}
	body, err := c.call(ctx, op, sendPath, payload)
	if err != nil {
		return 0, c.fail(op, err)
	}
	id, err := decodeMessageID(op, body)
	if err != nil {
		return 0, c.fail(op, err)
	}

	c.logger.Debug().
		Str("channel", string(c.variant)).
		Str("operation", op).
		Int64("message_id", int64(id)).
		Msg("viber message accepted")
	return id, nil
}

// GetMessageStatus fetches the receipt of a previously sent message.
func (c *Client[M, R]) GetMessageStatus(ctx context.Context, id models.MessageID) (R, error) {
	const op = "status"
	var zero R

	query, err := json.Marshal(statusQuery{MessageID: id})
	if err != nil {
		return zero, c.fail(op, fmt.Errorf("encode status query: %w", err))
	}
	body, err := c.call(ctx, op, statusPath, query)
	if err != nil {
		return zero, c.fail(op, err)
	}
	receipt, err := c.decode(op, body)
	if err != nil {
		return zero, c.fail(op, err)
	}

	c.logger.Debug().
		Str("channel", string(c.variant)).
		Str("operation", op).
		Int64("message_id", int64(id)).
		Msg("viber receipt received")
	return receipt, nil
}

// call posts one JSON body and returns the response body when it carries no
// error.
func (c *Client[M, R]) call(ctx context.Context, op, path string, payload []byte) (string, error) {
	header := http.Header{}
	header.Set("Authorization", c.authorization)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")

	resp, err := c.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + path,
		Header: header,
		Body:   payload,
	})
	if err != nil {
		return "", common.WrapTransport(op, err)
	}
	if err := classify(op, resp); err != nil {
		return "", err
	}
	return resp.Body, nil
}

func (c *Client[M, R]) fail(op string, err error) error {
	event := c.logger.Warn().
		Str("channel", string(c.variant)).
		Str("operation", op).
		Str("error_class", common.Classify(err)).
		Err(err)
	var viberErr *Error
	if errors.As(err, &viberErr) {
		event = event.
			Str("error_name", viberErr.Name).
			Int("error_code", viberErr.Code).
			Int("error_status", viberErr.Status)
	}
	event.Msg("viber request failed")
	return err
}
