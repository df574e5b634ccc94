package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/linemk/printshop/internal/domain/models"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func orderBadge(s models.OrderStatus) string {
	switch s {
	case models.OrderPaid:
		return cyan(string(s))
	case models.OrderFulfilled:
		return green(string(s))
	case models.OrderPendingPayment:
		return yellow(string(s))
	}
	return string(s)
}

func jobBadge(s models.JobStatus) string {
	switch s {
	case models.JobPrinting:
		return cyan(string(s))
	case models.JobDone:
		return green(string(s))
	case models.JobNeedsAttention:
		return red(string(s))
	case models.JobCanceled:
		return faint(string(s))
	case models.JobPaused, models.JobAwaitingPreflight:
		return yellow(string(s))
	}
	return string(s)
}

func optID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func progress(p float64) string {
	// бэкенд отдаёт долю или проценты
	if p <= 1 {
		p *= 100
	}
	return fmt.Sprintf("%.0f%%", p)
}

func renderJobs(out io.Writer, jobs []models.PrintJob) {
	tw := table(out)
	fmt.Fprintln(tw, "JOB\tSTATUS\tPRINTER\tPROGRESS\tEST")
	for _, j := range jobs {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%d min\n", j.ID, jobBadge(j.Status), optID(j.PrinterID), progress(j.Progress), j.EstTimeMin)
	}
	tw.Flush()
}

func renderCart(out io.Writer, cart *models.Cart) {
	if cart.Empty() {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	tw := table(out)
	fmt.Fprintln(tw, "ITEM\tDESCRIPTION\tQTY\tUNIT\tSUBTOTAL")
	for _, it := range cart.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, describeItem(it), it.Qty,
			models.FormatMoney(it.UnitPrice), models.FormatMoney(it.LineSubtotal()))
	}
	tw.Flush()

	currency := cart.Currency
	if currency == "" {
		currency = "EUR"
	}
	fmt.Fprintf(out, "subtotal: %s %s\n", models.FormatMoney(cart.SubtotalEUR), currency)
	if cart.Coupon != nil {
		fmt.Fprintf(out, "coupon %s: -%s %s\n", cart.Coupon.Code, models.FormatMoney(cart.DiscountEUR), currency)
	}
	fmt.Fprintf(out, "total: %s %s\n", models.FormatMoney(cart.TotalEUR), currency)
}

func describeItem(it models.CartItem) string {
	if it.Title != "" {
		return it.Title
	}
	parts := []string{fmt.Sprintf("print (quote #%d)", it.QuoteID)}
	if it.Material != nil {
		parts = append(parts, it.Material.Label())
	}
	return strings.Join(parts, ", ")
}
