package cmd

import (
	"fmt"

	"github.com/coolteam/cardshop/internal/tui/styles"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage color themes",
	Long: `Manage color themes for the cardshop TUI.

tui.theme takes a built-in theme name or the path to a YAML theme file.
Use 'theme export' to get a template for a custom theme.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in themes",
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeExportCmd = &cobra.Command{
	Use:   "export <theme-name> [output-file]",
	Short: "Export a theme to YAML",
	Long: `Export a built-in theme to YAML for customization.

If no output file is specified, the YAML is printed to stdout.

Examples:
  cardshop config theme export default
  cardshop config theme export nord ~/.config/cardshop/mytheme.yaml
  cardshop config set tui.theme ~/.config/cardshop/mytheme.yaml`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runThemeExport,
}

var themeCheckCmd = &cobra.Command{
	Use:   "check <theme-file>",
	Short: "Validate a theme file",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeCheck,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeExportCmd)
	themeCmd.AddCommand(themeCheckCmd)
	configCmd.AddCommand(themeCmd)
}

func runThemeList(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, "Built-in themes:")
	for _, name := range styles.BuiltinThemes() {
		_, _ = fmt.Fprintf(w, "  - %s\n", name)
	}
	return nil
}

func runThemeExport(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !styles.IsBuiltinTheme(name) {
		return fmt.Errorf("unknown theme: %s\n\nRun 'cardshop config theme list' to see available themes", name)
	}

	data, err := styles.ExportTheme(styles.ThemeName(name))
	if err != nil {
		return fmt.Errorf("exporting theme: %w", err)
	}

	if len(args) > 1 {
		if err := afero.WriteFile(newFs(), args[1], data, 0o644); err != nil {
			return fmt.Errorf("writing to %s: %w", args[1], err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Theme exported to: %s\n", args[1])
		return nil
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runThemeCheck(cmd *cobra.Command, args []string) error {
	theme, err := styles.LoadThemeFile(newFs(), args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s)\n", args[0], theme.Name)
	return nil
}
