package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/coolteam/cardshop/internal/admin"
	"github.com/coolteam/cardshop/internal/api"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var adminProductsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "List products",
	Args:    cobra.NoArgs,
	RunE:    runAdminProducts,
}

var adminProductAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	Long: `Add a product.

Example:
  cardshop admin products add --name "Steam 50" --category Games --price 50 \
    --content-file steam.md`,
	Args: cobra.NoArgs,
	RunE: runAdminProductAdd,
}

var adminProductEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a product; only the given flags are changed",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminProductEdit,
}

var adminProductDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminProductDelete,
}

var adminCardsCmd = &cobra.Command{
	Use:   "cards <product-id>",
	Short: "List the unused codes of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCards,
}

var adminCardsAddCmd = &cobra.Command{
	Use:   "add <product-id> [code...]",
	Short: "Add codes to a product",
	Long: `Add codes to a product, one per line.

Codes come from the arguments, from --file, or from stdin. Blank lines are
skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdminCardsAdd,
}

var adminCardsDeleteCmd = &cobra.Command{
	Use:   "delete <product-id> <position>",
	Short: "Delete the code at a position (as listed, starting at 1)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminCardsDelete,
}

var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders",
	Args:  cobra.NoArgs,
	RunE:  runAdminOrders,
}

var adminOrderCmd = &cobra.Command{
	Use:   "order <order-no>",
	Short: "Show one order with its codes",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminOrder,
}

func init() {
	for _, c := range []*cobra.Command{adminProductAddCmd, adminProductEditCmd} {
		f := c.Flags()
		f.String("name", "", "product name")
		f.String("category", "", "category id or name")
		f.String("price", "", "unit price, e.g. 9.90")
		f.String("image", "", "image URL")
		f.String("description", "", "short description")
		f.String("content", "", "markdown shown on the product page")
		f.String("content-file", "", "read the content from a file")
		f.String("delivery", "", "delivery info shown after payment")
	}
	adminProductDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	adminProductsCmd.AddCommand(adminProductAddCmd, adminProductEditCmd, adminProductDeleteCmd)

	adminCardsAddCmd.Flags().StringP("file", "f", "", "read codes from a file")
	adminCardsDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	adminCardsCmd.AddCommand(adminCardsAddCmd, adminCardsDeleteCmd)

	adminOrdersCmd.Flags().String("status", "", "only paid or pending orders")
	adminOrdersCmd.Flags().String("search", "", "order number or contact to search for")

	adminCmd.AddCommand(adminProductsCmd, adminCardsCmd, adminOrdersCmd, adminOrderCmd)
}

// -----------------------------------------------------------------------------
// Products
// -----------------------------------------------------------------------------

func runAdminProducts(cmd *cobra.Command, _ []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := c.Products.Load(cmd.Context()); err != nil {
		return err
	}
	printProducts(cmd.OutOrStdout(), c)
	return nil
}

func printProducts(w io.Writer, c *admin.Console) {
	if len(c.Products.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No products.")
		return
	}
	names := map[model.ID]string{}
	for _, cat := range c.Products.Categories {
		names[cat.ID] = cat.Name
	}
	rows := [][]string{{"ID", "NAME", "CATEGORY", "PRICE", "STOCK"}}
	for _, p := range c.Products.Items {
		rows = append(rows, []string{p.ID.String(), p.Name, names[p.CategoryID], model.FormatMoney(p.Price), p.StockLabel()})
	}
	table(w, rows)
}

// applyProductFlags overlays the flags that were given onto in.
func applyProductFlags(cmd *cobra.Command, c *admin.Console, fs afero.Fs, in *api.ProductInput) error {
	f := cmd.Flags()
	var err error
	f.Visit(func(flag *pflag.Flag) {
		if err != nil {
			return
		}
		v := flag.Value.String()
		switch flag.Name {
		case "name":
			in.Name = v
		case "category":
			id, ok := findCategory(c.Products.Categories, v)
			if !ok {
				err = fmt.Errorf("unknown category %q", v)
				return
			}
			in.CategoryID = id
		case "price":
			in.Price, err = decimal.NewFromString(v)
			if err != nil {
				err = fmt.Errorf("invalid price %q: %w", v, err)
			}
		case "image":
			in.Image = v
		case "description":
			in.Description = v
		case "content":
			in.Content = v
		case "content-file":
			var b []byte
			if b, err = afero.ReadFile(fs, v); err == nil {
				in.Content = string(b)
			}
		case "delivery":
			in.DeliveryInfo = v
		}
	})
	return err
}

func runAdminProductAdd(cmd *cobra.Command, _ []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	// Categories are needed to resolve --category by name.
	if err := c.Products.Load(ctx); err != nil {
		return err
	}
	var in api.ProductInput
	if err := applyProductFlags(cmd, c, e.fs, &in); err != nil {
		return err
	}
	if err := c.Products.Save(ctx, "", in); err != nil {
		return err
	}
	printProducts(cmd.OutOrStdout(), c)
	return nil
}

func runAdminProductEdit(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if err := c.Products.Load(ctx); err != nil {
		return err
	}
	id := model.ID(args[0])
	p, ok := c.Products.Find(id)
	if !ok {
		return fmt.Errorf("product %s not found", id)
	}
	in := admin.Input(p)
	if err := applyProductFlags(cmd, c, e.fs, &in); err != nil {
		return err
	}
	if err := c.Products.Save(ctx, id, in); err != nil {
		return err
	}
	printProducts(cmd.OutOrStdout(), c)
	return nil
}

func runAdminProductDelete(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	id := model.ID(args[0])
	if !confirm(cmd, fmt.Sprintf("Delete product %s?", id)) {
		return nil
	}
	if err := c.Products.Delete(cmd.Context(), id); err != nil {
		return err
	}
	printProducts(cmd.OutOrStdout(), c)
	return nil
}

// -----------------------------------------------------------------------------
// Cards
// -----------------------------------------------------------------------------

// openCards loads the product list and the code pool of one product.
func openCards(cmd *cobra.Command, c *admin.Console, productID string) error {
	ctx := cmd.Context()
	if err := c.Products.Load(ctx); err != nil {
		return err
	}
	p, ok := c.Products.Find(model.ID(productID))
	if !ok {
		return fmt.Errorf("product %s not found", productID)
	}
	return c.Cards.Open(ctx, p)
}

func printCards(w io.Writer, cards *admin.Cards) {
	_, _ = fmt.Fprintf(w, "%s (%s)\n", cards.Product.Name, cards.Product.StockLabel())
	for i, code := range cards.Items {
		_, _ = fmt.Fprintf(w, "%4d  %s\n", i+1, code)
	}
}

func runAdminCards(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := openCards(cmd, c, args[0]); err != nil {
		return err
	}
	printCards(cmd.OutOrStdout(), c.Cards)
	return nil
}

func runAdminCardsAdd(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := openCards(cmd, c, args[0]); err != nil {
		return err
	}

	var block string
	if codes := args[1:]; len(codes) > 0 {
		for _, code := range codes {
			block += code + "\n"
		}
	} else if block, err = textInput(cmd, e.fs, nil); err != nil {
		return err
	}

	added, err := c.Cards.AddBlock(cmd.Context(), block)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d cards added\n", added)
	printCards(cmd.OutOrStdout(), c.Cards)
	return nil
}

func runAdminCardsDelete(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	position, err := strconv.Atoi(args[1])
	if err != nil || position < 1 {
		return fmt.Errorf("position must be a number from 1, got %q", args[1])
	}
	if err := openCards(cmd, c, args[0]); err != nil {
		return err
	}
	if position > len(c.Cards.Items) {
		return fmt.Errorf("product has %d codes, no position %d", len(c.Cards.Items), position)
	}
	if !confirm(cmd, fmt.Sprintf("Delete card %q?", c.Cards.Items[position-1])) {
		return nil
	}
	if err := c.Cards.Delete(cmd.Context(), position-1); err != nil {
		return err
	}
	printCards(cmd.OutOrStdout(), c.Cards)
	return nil
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

func runAdminOrders(cmd *cobra.Command, _ []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	orders := c.Orders
	orders.Keyword, _ = cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	if err := orders.SetStatus(cmd.Context(), model.OrderStatus(status)); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(orders.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No orders.")
		return nil
	}
	rows := [][]string{{"ORDER", "PRODUCT", "QTY", "TOTAL", "STATUS", "CONTACT", "CREATED"}}
	for _, o := range orders.Items {
		rows = append(rows, []string{
			o.OrderNo,
			o.ProductName,
			strconv.Itoa(o.Quantity.Int()),
			model.FormatMoney(o.TotalPrice),
			o.Status.Label(),
			o.ContactValue(),
			o.CreatedAt,
		})
	}
	table(w, rows)
	return nil
}

func runAdminOrder(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	o, err := c.Orders.ShowDetail(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printOrder(cmd.OutOrStdout(), o)
	return nil
}
