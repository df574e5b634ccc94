package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/linemk/printshop/internal/poller"
	"github.com/spf13/cobra"
)

func newOrdersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List my orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := c.app.Orders.List(cmd.Context())
			if err != nil {
				return describe("load orders", err)
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders yet")
				return nil
			}

			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ORDER\tSTATUS\tTOTAL\tJOBS\tCREATED")
			for _, o := range orders {
				created := "-"
				if !o.CreatedAt.IsZero() {
					created = o.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(tw, "#%d\t%s\t%s EUR\t%d/%d\t%s\n", o.ID, orderBadge(o.Status), models.FormatMoney(o.TotalEUR), o.JobsDone, o.JobsTotal, created)
			}
			return tw.Flush()
		},
	}
}

func newOrderCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Order details",
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an order and its print jobs once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			p, err := poller.New(c.app.Logger, c.app.Orders, id)
			if err != nil {
				return err
			}
			p.Tick(cmd.Context())
			state := p.State()
			if err := statusError(state); err != nil {
				return err
			}
			renderStatus(cmd, state)
			return nil
		},
	}

	watch := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow order status until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			cfg := c.app.Config.Poller
			p, err := poller.New(c.app.Logger, c.app.Orders, id,
				poller.WithIntervals(cfg.ActiveInterval, cfg.IdleInterval),
				poller.WithVisibility(poller.TerminalVisibility(os.Stdin)),
				poller.WithOnChange(func(s poller.State) { renderStatus(cmd, s) }),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching order #%d, ctrl+c to stop\n", id)
			// выход по ctrl+c - нормальное завершение
			_ = p.Run(cmd.Context())
			return nil
		},
	}

	cmd.AddCommand(show, watch)
	return cmd
}

// statusError - показывать нечего, команда должна завершиться с ошибкой
func statusError(s poller.State) error {
	if s.View == nil && s.Err != "" {
		return errors.New(s.Err)
	}
	return nil
}

func renderStatus(cmd *cobra.Command, s poller.State) {
	out := cmd.OutOrStdout()
	if s.Loading {
		fmt.Fprintln(out, "loading...")
		return
	}
	if s.Err != "" {
		fmt.Fprintln(out, red(s.Err))
	}
	if s.View == nil {
		return
	}

	o := s.View.Order
	fmt.Fprintf(out, "\norder #%d  %s  %s EUR\n", o.ID, orderBadge(o.Status), models.FormatMoney(o.TotalEUR))
	if len(s.View.Jobs) == 0 {
		fmt.Fprintln(out, "no print jobs yet")
		return
	}
	renderJobs(out, s.View.Jobs)
}
