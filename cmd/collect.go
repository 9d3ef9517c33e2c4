// cmd/collect.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/locator"
	"github.com/xkilldash9x/robustdom/internal/page"
)

// attributeKind collects plain components keyed by one attribute.
func attributeKind(attr string) page.Kind[string, *page.Component] {
	return page.Kind[string, *page.Component]{
		Name: "component[" + attr + "]",
		New: func(h *element.Handle, parent page.Container) (*page.Component, error) {
			return page.NewComponent(h, parent), nil
		},
		Key: func(ctx context.Context, h *element.Handle) (string, error) {
			return h.Attribute(ctx, attr)
		},
	}
}

func newCollectCmd() *cobra.Command {
	var (
		url     string
		expr    string
		keyAttr string
	)

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect every match of a locator into a keyed map",
		Long: `Loads a page and snapshots every element matching the locator, keyed by
the given attribute. Keys and texts are printed in document order.`,
		Example: `  robustdom collect --url https://example.com/cart --locator "tr.line" --key-attr data-sku`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			by, err := locator.Parse(expr)
			if err != nil {
				return err
			}
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, release, err := openPage(ctx, cfg, url)
			if err != nil {
				return err
			}
			defer release()

			m, err := page.NewMap(ctx, p, attributeKind(keyAttr), by)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for key, entry := range m.All() {
				text, err := entry.Handle().Text(ctx)
				if err != nil {
					return fmt.Errorf("reading %q: %w", key, err)
				}
				fmt.Fprintf(out, "%s\t%s\n", key, text)
			}
			fmt.Fprintf(out, "%d matched\n", m.Len())
			return nil
		},
	}

	collectCmd.Flags().StringVarP(&url, "url", "u", "", "page to load (required)")
	collectCmd.Flags().StringVarP(&expr, "locator", "l", "", "locator matching every component (required)")
	collectCmd.Flags().StringVar(&keyAttr, "key-attr", "id", "attribute each component is keyed by")
	_ = collectCmd.MarkFlagRequired("url")
	_ = collectCmd.MarkFlagRequired("locator")
	return collectCmd
}
