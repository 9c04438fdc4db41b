package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/config"
	"github.com/decisiontelecom/messaging-gateway-go/internal/factory"
	"github.com/decisiontelecom/messaging-gateway-go/internal/logger"
	"github.com/decisiontelecom/messaging-gateway-go/internal/models"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
	"github.com/decisiontelecom/messaging-gateway-go/internal/worker"
)

const usage = `usage:
  gatewayctl sms send -phone PHONE -sender SENDER -text TEXT [-dlr]
  gatewayctl sms status ID...
  gatewayctl sms balance
  gatewayctl viber send -sender SENDER -receiver PHONE -text TEXT [-type 106] [-source 2]
                        [-image URL] [-button-caption TEXT] [-button-action URL]
                        [-callback URL] [-validity SECONDS] [-sms-text TEXT]
  gatewayctl viber status [-plus] ID...`

var errUsage = errors.New(usage)

type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	transport transport.Transport
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "gatewayctl").Logger()

	a := &app{
		cfg:       cfg,
		log:       log,
		transport: factory.Transport(cfg.HTTP, log.With().Str("component", "transport").Logger()),
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error().
			Str("error_class", common.Classify(err)).
			Err(err).
			Msg("command failed")
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	switch args[0] + " " + args[1] {
	case "sms send":
		return a.smsSend(ctx, args[2:])
	case "sms status":
		return a.smsStatus(ctx, args[2:])
	case "sms balance":
		return a.smsBalance(ctx)
	case "viber send":
		return a.viberSend(ctx, args[2:])
	case "viber status":
		return a.viberStatus(ctx, args[2:])
	default:
		return errUsage
	}
}

func (a *app) smsSend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sms send", flag.ContinueOnError)
	phone := fs.String("phone", "", "receiver phone number")
	sender := fs.String("sender", "", "sender phone number or alphanumeric id")
	text := fs.String("text", "", "message text")
	dlr := fs.Bool("dlr", false, "request a delivery receipt")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	client, err := factory.SMS(a.cfg.SMS, a.transport, a.log)
	if err != nil {
		return err
	}
	id, err := client.SendMessage(ctx, models.SMSMessage{
		ReceiverPhone: *phone,
		Sender:        *sender,
		Text:          *text,
		Delivery:      *dlr,
	})
	if err != nil {
		return err
	}
	a.log.Info().Int64("message_id", int64(id)).Msg("sms sent")
	return nil
}

func (a *app) smsStatus(ctx context.Context, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	client, err := factory.SMS(a.cfg.SMS, a.transport, a.log)
	if err != nil {
		return err
	}
	pool, err := worker.NewPool(a.cfg.CLI.Concurrency, a.log)
	if err != nil {
		return err
	}

	var failed int
	for _, res := range worker.Run(ctx, pool, ids, client.GetMessageStatus) {
		if res.Err != nil {
			failed++
			a.logFailure(res.ID, res.Err)
			continue
		}
		a.log.Info().
			Int64("message_id", int64(res.ID)).
			Stringer("status", res.Receipt).
			Msg("sms status")
	}
	return lookupErr(failed)
}

func (a *app) smsBalance(ctx context.Context) error {
	client, err := factory.SMS(a.cfg.SMS, a.transport, a.log)
	if err != nil {
		return err
	}
	balance, err := client.GetBalance(ctx)
	if err != nil {
		return err
	}
	a.log.Info().
		Str("balance", balance.Balance.String()).
		Str("credit", balance.Credit.String()).
		Str("currency", balance.Currency).
		Msg("sms balance")
	return nil
}

func (a *app) viberSend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("viber send", flag.ContinueOnError)
	sender := fs.String("sender", "", "sender name")
	receiver := fs.String("receiver", "", "receiver phone number")
	text := fs.String("text", "", "message text")
	msgType := fs.Int("type", int(models.ViberTypeTextOnly), "message type: 106, 108, 206 or 208")
	source := fs.Int("source", int(models.ViberSourceTransactional), "source type: 1 promotional, 2 transactional")
	image := fs.String("image", "", "image url")
	caption := fs.String("button-caption", "", "button caption")
	action := fs.String("button-action", "", "button action url")
	callback := fs.String("callback", "", "delivery callback url")
	validity := fs.Int("validity", 0, "validity period in seconds")
	smsText := fs.String("sms-text", "", "SMS fallback text; selects the Viber plus SMS channel")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	msg := models.ViberMessage{
		Sender:         *sender,
		Receiver:       *receiver,
		Type:           models.ViberMessageType(*msgType),
		Text:           *text,
		ImageURL:       *image,
		ButtonCaption:  *caption,
		ButtonAction:   *action,
		SourceType:     models.ViberSourceType(*source),
		CallbackURL:    *callback,
		ValidityPeriod: *validity,
	}

	var id models.MessageID
	if *smsText != "" {
		client, err := factory.ViberPlusSMS(a.cfg.Viber, a.transport, a.log)
		if err != nil {
			return err
		}
		id, err = client.SendMessage(ctx, models.ViberPlusSMSMessage{ViberMessage: msg, SMSText: *smsText})
		if err != nil {
			return err
		}
	} else {
		client, err := factory.Viber(a.cfg.Viber, a.transport, a.log)
		if err != nil {
			return err
		}
		id, err = client.SendMessage(ctx, msg)
		if err != nil {
			return err
		}
	}
	a.log.Info().Int64("message_id", int64(id)).Msg("viber message sent")
	return nil
}

func (a *app) viberStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("viber status", flag.ContinueOnError)
	plus := fs.Bool("plus", false, "query the Viber plus SMS channel")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	ids, err := parseIDs(fs.Args())
	if err != nil {
		return err
	}
	pool, err := worker.NewPool(a.cfg.CLI.Concurrency, a.log)
	if err != nil {
		return err
	}

	var failed int
	if *plus {
		client, err := factory.ViberPlusSMS(a.cfg.Viber, a.transport, a.log)
		if err != nil {
			return err
		}
		for _, res := range worker.Run(ctx, pool, ids, client.GetMessageStatus) {
			if res.Err != nil {
				failed++
				a.logFailure(res.ID, res.Err)
				continue
			}
			event := a.log.Info().
				Int64("message_id", int64(res.ID)).
				Stringer("status", res.Receipt.Status)
			if res.Receipt.SMSMessageID != nil {
				event = event.Int64("sms_message_id", int64(*res.Receipt.SMSMessageID))
			}
			if res.Receipt.SMSStatus != nil {
				event = event.Stringer("sms_status", *res.Receipt.SMSStatus)
			}
			event.Msg("viber plus sms status")
		}
		return lookupErr(failed)
	}

	client, err := factory.Viber(a.cfg.Viber, a.transport, a.log)
	if err != nil {
		return err
	}
	for _, res := range worker.Run(ctx, pool, ids, client.GetMessageStatus) {
		if res.Err != nil {
			failed++
			a.logFailure(res.ID, res.Err)
			continue
		}
		a.log.Info().
			Int64("message_id", int64(res.ID)).
			Stringer("status", res.Receipt.Status).
			Msg("viber status")
	}
	return lookupErr(failed)
}

func (a *app) logFailure(id models.MessageID, err error) {
	a.log.Warn().
		Int64("message_id", int64(id)).
		Str("error_class", common.Classify(err)).
		Err(err).
		Msg("status lookup failed")
}

func parseIDs(args []string) ([]models.MessageID, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	ids := make([]models.MessageID, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid message id %q: %w", arg, err)
		}
		ids = append(ids, models.MessageID(id))
	}
	return ids, nil
}

func lookupErr(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d status lookups failed", failed)
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("gatewayctl init failed")
}
