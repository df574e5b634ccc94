package main

import (
	"fmt"
	"strconv"

	"github.com/linemk/printshop/internal/domain/models"
	"github.com/spf13/cobra"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(c, cmd)
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <quote-id>",
		Short: "Add a quote to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "quote")
			if err != nil {
				return err
			}
			if err := c.app.Carts.AddQuote(cmd.Context(), &models.Quote{ID: id}, qty); err != nil {
				return describe("add quote to cart", err)
			}
			return showCart(c, cmd)
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "number of copies")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showCart(c, cmd)
			},
		},
		add,
		&cobra.Command{
			Use:   "qty <item-id> <qty>",
			Short: "Change the quantity of a cart line",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "item")
				if err != nil {
					return err
				}
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid quantity %q", args[1])
				}
				cart, err := c.app.Carts.Get(cmd.Context())
				if err != nil {
					return describe("load cart", err)
				}
				cart, err = c.app.Carts.UpdateQty(cmd.Context(), cart, id, n)
				renderCart(cmd.OutOrStdout(), cart)
				if err != nil {
					return describe("update quantity", err)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <item-id>",
			Short: "Remove a cart line",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0], "item")
				if err != nil {
					return err
				}
				if err := c.app.Carts.Remove(cmd.Context(), id); err != nil {
					return describe("remove item", err)
				}
				return showCart(c, cmd)
			},
		},
		&cobra.Command{
			Use:   "coupon <code>",
			Short: "Apply a coupon",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cart, err := c.app.Carts.ApplyCoupon(cmd.Context(), args[0])
				if err != nil {
					return describe("apply coupon", err)
				}
				renderCart(cmd.OutOrStdout(), cart)
				return nil
			},
		},
		&cobra.Command{
			Use:   "uncoupon",
			Short: "Remove the applied coupon",
			RunE: func(cmd *cobra.Command, args []string) error {
				cart, err := c.app.Carts.RemoveCoupon(cmd.Context())
				if err != nil {
					return describe("remove coupon", err)
				}
				renderCart(cmd.OutOrStdout(), cart)
				return nil
			},
		},
	)
	return cmd
}

func showCart(c *cli, cmd *cobra.Command) error {
	cart, err := c.app.Carts.Get(cmd.Context())
	if err != nil {
		return describe("load cart", err)
	}
	renderCart(cmd.OutOrStdout(), cart)
	return nil
}

func newCheckoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Create an order from the cart and start payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cart, err := c.app.Carts.Get(cmd.Context())
			if err != nil {
				return describe("load cart", err)
			}
			res, err := c.app.Carts.Checkout(cmd.Context(), cart)
			if err != nil {
				return describe("check out", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "order #%d created, %s EUR, %s\n", res.Order.OrderID, models.FormatMoney(res.Order.TotalEUR), orderBadge(res.Order.Status))
			fmt.Fprintf(out, "pay here: %s\n", res.Payment.CheckoutURL)
			fmt.Fprintf(out, "track it: printshop order watch %d\n", c.app.Session.LastOrderID())
			return nil
		},
	}
}
