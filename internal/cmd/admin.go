package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/coolteam/cardshop/internal/admin"
	"github.com/coolteam/cardshop/internal/model"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the shop (requires the admin password)",
	Long: `Manage categories, products, card codes, orders and the site notice.

Run 'cardshop admin login' first. The token is kept in the session store
until 'cardshop admin logout' or until the server rejects it.`,
}

var adminLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the admin password",
	Long: `Log in with the admin password.

Without --password the password is read from the terminal without echo, or
from the first line of stdin when it is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: runAdminLogin,
}

var adminLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the admin token",
	Args:  cobra.NoArgs,
	RunE:  runAdminLogout,
}

var adminCategoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category"},
	Short:   "List categories",
	Args:    cobra.NoArgs,
	RunE:    runAdminCategories,
}

var adminCategoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCategoryAdd,
}

var adminCategoryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename or redescribe a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCategoryEdit,
}

var adminCategoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category and all of its products",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCategoryDelete,
}

var adminNoticeCmd = &cobra.Command{
	Use:   "notice",
	Short: "Show the site notice",
	Args:  cobra.NoArgs,
	RunE:  runAdminNotice,
}

var adminNoticeSetCmd = &cobra.Command{
	Use:   "set [content]",
	Short: "Replace the site notice",
	Long: `Replace the site notice. The notice is markdown.

The content comes from the argument, from --file, or from stdin when
neither is given. An empty notice clears it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdminNoticeSet,
}

var adminUploadCmd = &cobra.Command{
	Use:   "upload <image-path>",
	Short: "Upload a product image and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUpload,
}

func init() {
	adminLoginCmd.Flags().String("password", "", "admin password")

	adminCategoryAddCmd.Flags().String("description", "", "category description")
	adminCategoryEditCmd.Flags().String("name", "", "new name")
	adminCategoryEditCmd.Flags().String("description", "", "new description")
	adminCategoryDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	adminCategoriesCmd.AddCommand(adminCategoryAddCmd, adminCategoryEditCmd, adminCategoryDeleteCmd)

	adminNoticeSetCmd.Flags().StringP("file", "f", "", "read the notice from a file")
	adminNoticeCmd.AddCommand(adminNoticeSetCmd)

	adminCmd.AddCommand(adminLoginCmd, adminLogoutCmd, adminCategoriesCmd, adminNoticeCmd, adminUploadCmd)
	rootCmd.AddCommand(adminCmd)
}

// adminSession opens the console and requires a stored token.
func adminSession() (*env, *admin.Console, error) {
	e, err := newEnv()
	if err != nil {
		return nil, nil, err
	}
	console := admin.New(e.client, e.store, e.fs, e.logger)
	if !console.Authorized() {
		e.Close()
		return nil, nil, fmt.Errorf("not logged in: run 'cardshop admin login' first")
	}
	return e, console, nil
}

// confirm asks a yes/no question on stdin unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Admin password: ")
		b, err := term.ReadPassword(f.Fd())
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runAdminLogin(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	password, _ := cmd.Flags().GetString("password")
	if !cmd.Flags().Changed("password") {
		if password, err = readPassword(cmd); err != nil {
			return err
		}
	}

	console := admin.New(e.client, e.store, e.fs, e.logger)
	if err := console.Gate.Login(cmd.Context(), password); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
	return nil
}

func runAdminLogout(cmd *cobra.Command, _ []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	admin.New(e.client, e.store, e.fs, e.logger).Gate.Logout()
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runAdminCategories(cmd *cobra.Command, _ []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := c.Categories.Load(cmd.Context()); err != nil {
		return err
	}
	printCategories(cmd.OutOrStdout(), c.Categories.Items)
	return nil
}

func printCategories(w io.Writer, categories []model.Category) {
	if len(categories) == 0 {
		_, _ = fmt.Fprintln(w, "No categories.")
		return
	}
	rows := [][]string{{"ID", "NAME", "DESCRIPTION"}}
	for _, c := range categories {
		rows = append(rows, []string{c.ID.String(), c.Name, c.Description})
	}
	table(w, rows)
}

func runAdminCategoryAdd(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	description, _ := cmd.Flags().GetString("description")
	if err := c.Categories.Save(cmd.Context(), "", args[0], description); err != nil {
		return err
	}
	printCategories(cmd.OutOrStdout(), c.Categories.Items)
	return nil
}

func runAdminCategoryEdit(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if err := c.Categories.Load(ctx); err != nil {
		return err
	}
	id := model.ID(args[0])
	var current *model.Category
	for i := range c.Categories.Items {
		if c.Categories.Items[i].ID == id {
			current = &c.Categories.Items[i]
		}
	}
	if current == nil {
		return fmt.Errorf("category %s not found", id)
	}

	name, description := current.Name, current.Description
	if cmd.Flags().Changed("name") {
		name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("description") {
		description, _ = cmd.Flags().GetString("description")
	}
	if err := c.Categories.Save(ctx, id, name, description); err != nil {
		return err
	}
	printCategories(cmd.OutOrStdout(), c.Categories.Items)
	return nil
}

func runAdminCategoryDelete(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	id := model.ID(args[0])
	if !confirm(cmd, fmt.Sprintf("Delete category %s and all of its products?", id)) {
		return nil
	}
	if err := c.Categories.Delete(cmd.Context(), id); err != nil {
		return err
	}
	printCategories(cmd.OutOrStdout(), c.Categories.Items)
	return nil
}

func runAdminNotice(cmd *cobra.Command, _ []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := c.Notice.Load(cmd.Context()); err != nil {
		return err
	}
	if c.Notice.Content == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no notice)")
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.Notice.Content)
	return nil
}

func runAdminNoticeSet(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	content, err := textInput(cmd, e.fs, args)
	if err != nil {
		return err
	}
	if err := c.Notice.Save(cmd.Context(), content); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), admin.MsgNoticeSaved)
	return nil
}

// textInput returns the first argument, the --file contents, or stdin.
func textInput(cmd *cobra.Command, fs afero.Fs, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(b), nil
}

func runAdminUpload(cmd *cobra.Command, args []string) error {
	e, c, err := adminSession()
	if err != nil {
		return err
	}
	defer e.Close()

	url, err := c.Products.UploadImage(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
