package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fincalc/internal/amqp"
	"fincalc/internal/config"
	"fincalc/internal/log"
)

type eventsOptions struct {
	url      string
	exchange string
	binding  string
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &eventsOptions{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow calculation events from a running server",
		Long: `Bind a temporary queue to the server's event exchange and print each
calculation as it completes. The broker defaults to AMQP_URL and
AMQP_EXCHANGE from the environment or .env file. Stop with Ctrl-C.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "AMQP broker URL (default $AMQP_URL)")
	cmd.Flags().StringVar(&opts.exchange, "exchange", "", "exchange name (default $AMQP_EXCHANGE)")
	cmd.Flags().StringVar(&opts.binding, "binding", "calculation.#", "routing key pattern to bind")

	return cmd
}

func runEvents(rootOpts *RootOptions, opts *eventsOptions, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := rootOpts.getLogger().WithComponent(log.ComponentAMQP)

	LoadEnvFile()
	cfg := config.Load()
	if opts.url == "" {
		opts.url = cfg.AMQPURL
	}
	if opts.exchange == "" {
		opts.exchange = cfg.AMQPExchange
	}
	if opts.url == "" {
		msg := "no broker configured: set AMQP_URL or pass --url"
		_ = out.Error(ErrCodeUsage, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	client, err := amqp.NewClient(opts.url, opts.exchange, cfg.AMQPRoutingKey, logger)
	if err != nil {
		_ = out.Error(ErrCodeUnavailable, "cannot reach the broker", []string{err.Error()})
		return WrapExitError(ExitCommandError, "connect to broker", err)
	}
	defer client.Close()

	ctx, cancel := GracefulShutdown(cmd.Context(), logger)
	defer cancel()

	err = client.Consume(ctx, opts.binding, func(e *amqp.CalculationEvent) error {
		return printEvent(out, e)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return WrapExitError(ExitFailure, "consume events", err)
	}
	return nil
}

// printEvent writes one event per line: JSON lines or a short summary.
func printEvent(out *OutputFormatter, e *amqp.CalculationEvent) error {
	if out.Format == "json" {
		return json.NewEncoder(out.Writer).Encode(e)
	}
	cache := "computed"
	if e.CacheHit {
		cache = "cached"
	}
	_, err := fmt.Fprintf(out.Writer, "%s  %-20s %-20s %s  request=%s\n",
		e.Timestamp.Format("15:04:05"), e.Calculator, e.Kind, cache, e.RequestID)
	return err
}
