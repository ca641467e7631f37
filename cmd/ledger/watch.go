package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pesa/internal/amqp"
	"pesa/internal/cli"
	"pesa/internal/core"
	"pesa/internal/worker"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print ledger changes and budget overruns until interrupted (requires AMQP_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}
			client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := cli.SignalContext(cmd.Context(), a.logger)
			defer stop()

			w := worker.NewBudgetWorker(a.backend.Accounts, a.ledger(), a.printAlert, a.logger)
			err = client.ConsumeLedgerChanges(ctx, func(msg *amqp.LedgerChangedMessage) error {
				return w.HandleLedgerChanged(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func (a *app) printAlert(alert worker.Alert) error {
	msg := alert.Change
	_, err := fmt.Fprintf(a.out, "%s  %s  %s %s (%d records)\n",
		msg.Timestamp.Local().Format("2006-01-02 15:04:05"), msg.Username, msg.Operation, msg.Part, msg.Records)
	if err != nil {
		return err
	}
	for _, s := range alert.OverBudget {
		if _, err := fmt.Fprintf(a.out, "  over budget: %s by %s %s\n", s.Category, s.Remaining.Neg().StringFixed(2), core.BaseCurrency); err != nil {
			return err
		}
	}
	return nil
}
