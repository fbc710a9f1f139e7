package cmd

import (
	"fmt"
	"io"

	"github.com/coolteam/cardshop/internal/lookup"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/coolteam/cardshop/internal/util"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Look up orders by contact and query password",
	Long: `Look up orders by the contact and query password used at checkout.

Both default to the ones remembered from the last purchase. Card codes are
printed only for paid orders.`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List orders placed from this machine",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	queryCmd.Flags().String("contact", "", "QQ number used at checkout")
	queryCmd.Flags().String("password", "", "query password")
	historyCmd.Flags().Bool("show-passwords", false, "print query passwords in full")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(historyCmd)
}

func runQuery(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	view := lookup.New(e.client, e.store, lookup.WithLogger(e.logger))
	if contact, _ := cmd.Flags().GetString("contact"); contact != "" {
		view.Contact = contact
	}
	if password, _ := cmd.Flags().GetString("password"); password != "" {
		view.Password = password
	}
	if err := view.Query(cmd.Context()); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i, o := range view.Orders {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		printOrder(w, o)
	}
	return nil
}

func printOrder(w io.Writer, o model.Order) {
	field(w, "Order no", o.OrderNo)
	field(w, "Status", o.Status.Label())
	field(w, "Product", fmt.Sprintf("%s × %d", o.ProductName, o.Quantity.Int()))
	field(w, "Total", model.FormatMoney(o.TotalPrice))
	if o.PayType != "" {
		field(w, "Paid with", o.PayType.Label())
	}
	field(w, "Contact", o.ContactValue())
	field(w, "Created", o.CreatedAt)
	field(w, "Paid", o.PaidAt)
	field(w, "Trade no", o.TradeNo)

	cards := lookup.VisibleCards(o)
	switch {
	case !o.IsPaid():
		_, _ = fmt.Fprintln(w, "Codes appear once the payment is confirmed.")
	case len(cards) == 0:
		_, _ = fmt.Fprintln(w, "No codes on this order.")
	default:
		_, _ = fmt.Fprintln(w, "Codes:")
		for _, code := range cards {
			_, _ = fmt.Fprintf(w, "  %s\n", code)
		}
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	history := e.store.History()
	if len(history) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No orders yet.")
		return nil
	}

	show, _ := cmd.Flags().GetBool("show-passwords")
	rows := [][]string{{"ORDER", "PRODUCT", "TOTAL", "CONTACT", "PASSWORD", "CREATED"}}
	// Newest first.
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		password := h.QueryPassword
		if !show {
			password = util.Mask(password)
		}
		rows = append(rows, []string{h.OrderNo, h.ProductName, h.TotalPrice, h.Contact, password, h.CreatedAt})
	}
	table(cmd.OutOrStdout(), rows)
	return nil
}
