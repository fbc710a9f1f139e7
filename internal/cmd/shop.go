package cmd

import (
	"fmt"
	"strings"

	"github.com/coolteam/cardshop/internal/catalog"
	"github.com/coolteam/cardshop/internal/checkout"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Long: `List every product with its category, price and stock.

Use --category with a category id or name to narrow the list.`,
	Args: cobra.NoArgs,
	RunE: runProducts,
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

var noticeCmd = &cobra.Command{
	Use:   "notice",
	Short: "Print the site notice",
	Args:  cobra.NoArgs,
	RunE:  runNotice,
}

var buyCmd = &cobra.Command{
	Use:   "buy <product-id>",
	Short: "Place an order",
	Long: `Place an order for a product and print the order number, the query
password and the payment link.

The contact and query password default to the ones used last time.

Examples:
  cardshop buy 12 --contact 123456
  cardshop buy 12 -n 3 --contact 123456 --password s3cret --pay wxpay`,
	Args: cobra.ExactArgs(1),
	RunE: runBuy,
}

func init() {
	productsCmd.Flags().String("category", "", "only list this category (id or name)")

	buyCmd.Flags().IntP("quantity", "n", 1, "number of codes to buy")
	buyCmd.Flags().String("contact", "", "QQ number for the order (default: last used)")
	buyCmd.Flags().String("password", "", "query password for looking the order up (default: last used)")
	buyCmd.Flags().String("pay", "", "payment method (default: first configured)")

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(noticeCmd)
	rootCmd.AddCommand(buyCmd)
}

func runProducts(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	view := catalog.New(e.client, e.logger)
	// Partial failures are reported per source below.
	_ = view.Load(cmd.Context())
	if view.ProductsErr != nil {
		return view.ProductsErr
	}
	if view.CategoriesErr != nil {
		cmd.PrintErrln("warning:", view.CategoriesErr)
	}

	if want, _ := cmd.Flags().GetString("category"); want != "" {
		id, ok := findCategory(view.Categories, want)
		if !ok {
			return fmt.Errorf("unknown category %q", want)
		}
		view.Select(id)
	}

	products := view.Visible()
	if len(products) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No products.")
		return nil
	}

	rows := [][]string{{"ID", "NAME", "CATEGORY", "PRICE", "STOCK"}}
	for _, p := range products {
		rows = append(rows, []string{
			p.ID.String(),
			p.Name,
			view.CategoryName(p),
			model.FormatMoney(p.Price),
			p.StockLabel(),
		})
	}
	table(cmd.OutOrStdout(), rows)
	return nil
}

func findCategory(categories []model.Category, value string) (model.ID, bool) {
	for _, c := range categories {
		if c.ID.String() == value || strings.EqualFold(c.Name, value) {
			return c.ID, true
		}
	}
	return "", false
}

func runProduct(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := catalog.New(e.client, e.logger).Product(cmd.Context(), model.ID(args[0]))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	field(w, "ID", p.ID.String())
	field(w, "Name", p.Name)
	if p.Category != nil {
		field(w, "Category", p.Category.Name)
	}
	field(w, "Price", model.FormatMoney(p.Price))
	field(w, "Stock", p.StockLabel())
	field(w, "Image", p.Image)
	if p.RequiresQueryPassword() {
		field(w, "Query password", "required")
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", d)
	}
	return nil
}

func runNotice(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	resp := e.client.GetNotice(cmd.Context())
	if err := resp.Error(catalog.MsgNoticeFailed); err != nil {
		return err
	}
	if strings.TrimSpace(resp.Data) == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no notice)")
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), resp.Data)
	return nil
}

func runBuy(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	p, err := catalog.New(e.client, e.logger).Product(ctx, model.ID(args[0]))
	if err != nil {
		return err
	}

	payTypes, err := e.payTypes()
	if err != nil {
		return err
	}
	opts := []checkout.Option{checkout.WithLogger(e.logger), checkout.WithContactType(e.cfg.Shop.ContactType)}
	if len(payTypes) > 0 {
		opts = append(opts, checkout.WithPayTypes(payTypes...))
	}
	flow := checkout.New(e.client, e.store, opts...)
	if err := flow.Open(p); err != nil {
		return err
	}

	flags := cmd.Flags()
	quantity, _ := flags.GetInt("quantity")
	if quantity < 1 || quantity > p.Stock() {
		return fmt.Errorf("quantity must be between 1 and %d", p.Stock())
	}
	flow.SetQuantity(quantity)
	if flags.Changed("contact") {
		contact, _ := flags.GetString("contact")
		flow.SetContact(contact)
	}
	if flags.Changed("password") {
		password, _ := flags.GetString("password")
		flow.SetQueryPassword(password)
	}
	if flags.Changed("pay") {
		raw, _ := flags.GetString("pay")
		pay, err := model.ParsePayType(raw)
		if err != nil {
			return err
		}
		if err := flow.SetPayType(pay); err != nil {
			return err
		}
	}

	result, err := flow.Submit(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Order created for %d × %s\n\n", flow.Quantity(), p.Name)
	field(w, "Order no", result.OrderNo)
	field(w, "Query password", result.QueryPassword)
	field(w, "Total", model.FormatMoney(result.TotalPrice))
	field(w, "Pay with", flow.PayType().Label())
	field(w, "Pay at", result.PayURL)
	_, _ = fmt.Fprintln(w, "\nCodes are released once the payment is confirmed. Check with: cardshop query")
	return nil
}
