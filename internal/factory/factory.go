package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/decisiontelecom/messaging-gateway-go/internal/adapters/sms"
	"github.com/decisiontelecom/messaging-gateway-go/internal/adapters/viber"
	"github.com/decisiontelecom/messaging-gateway-go/internal/config"
	"github.com/decisiontelecom/messaging-gateway-go/internal/logger"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

// ErrMissingCredentials is returned when a channel is requested without the
// credentials it needs.
var ErrMissingCredentials = errors.New("factory: missing credentials")

// Transport constructs the shared HTTP transport from configuration.
func Transport(cfg config.HTTPConfig, log zerolog.Logger) transport.Transport {
	return transport.New(log,
		transport.WithTimeout(cfg.RequestTimeout()),
		transport.WithBodyLimit(int64(cfg.MaxResponseBytes)),
	)
}

// SMS constructs the SMS client. Login and password are both required.
func SMS(cfg config.SMSConfig, t transport.Transport, log zerolog.Logger) (*sms.Client, error) {
	if normalize(cfg.Login) == "" || normalize(cfg.Password) == "" {
		return nil, fmt.Errorf("%w: SMS_LOGIN and SMS_PASSWORD must be set", ErrMissingCredentials)
	}
	log = logger.Channel(log, "sms")
	client := sms.NewClient(cfg.Login, cfg.Password, log,
		sms.WithBaseURL(cfg.BaseURL),
		sms.WithTransport(t),
	)
	log.Info().
		Str("base_url", cfg.BaseURL).
		Msg("sms client initialised")
	return client, nil
}

// Viber constructs the plain Viber client.
func Viber(cfg config.ViberConfig, t transport.Transport, log zerolog.Logger) (*viber.ViberClient, error) {
	opts, err := viberOptions(cfg, t)
	if err != nil {
		return nil, err
	}
	log = logger.Channel(log, string(viber.VariantViber))
	client := viber.NewClient(cfg.APIKey, log, opts...)
	log.Info().
		Str("base_url", cfg.BaseURL).
		Msg("viber client initialised")
	return client, nil
}

// ViberPlusSMS constructs the Viber client with SMS fallback.
func ViberPlusSMS(cfg config.ViberConfig, t transport.Transport, log zerolog.Logger) (*viber.PlusSMSClient, error) {
	opts, err := viberOptions(cfg, t)
	if err != nil {
		return nil, err
	}
	log = logger.Channel(log, string(viber.VariantViberPlusSMS))
	client := viber.NewPlusSMSClient(cfg.APIKey, log, opts...)
	log.Info().
		Str("base_url", cfg.BaseURL).
		Msg("viber plus sms client initialised")
	return client, nil
}

func viberOptions(cfg config.ViberConfig, t transport.Transport) ([]viber.Option, error) {
	if normalize(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: VIBER_API_KEY must be set", ErrMissingCredentials)
	}
	return []viber.Option{viber.WithBaseURL(cfg.BaseURL), viber.WithTransport(t)}, nil
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}
