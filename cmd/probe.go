// cmd/probe.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/robustdom/internal/element"
	"github.com/xkilldash9x/robustdom/internal/locator"
	"github.com/xkilldash9x/robustdom/internal/page"
)

func newProbeCmd() *cobra.Command {
	var (
		url      string
		expr     string
		index    int
		optional bool
	)

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Locate one element and describe it",
		Long: `Loads a page, builds a self-healing handle for the locator and prints
what the handle resolves to. Locators use kind=value notation (css=, xpath=,
id=, name=, class=, tag=, link=, partial=); a bare expression is CSS unless it
starts like an XPath.`,
		Example: `  robustdom probe --url https://example.com --locator "tag=h1"
  robustdom probe --url https://example.com --locator "//p" --index 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if index >= 0 && optional {
				return fmt.Errorf("--index and --optional are mutually exclusive")
			}
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

			h, err := findFor(cmd, p, by, index, optional)
			if err != nil {
				return err
			}
			return describe(cmd, h)
		},
	}

	probeCmd.Flags().StringVarP(&url, "url", "u", "", "page to load (required)")
	probeCmd.Flags().StringVarP(&expr, "locator", "l", "", "element locator (required)")
	probeCmd.Flags().IntVar(&index, "index", -1, "pick the n-th match instead of the single match")
	probeCmd.Flags().BoolVar(&optional, "optional", false, "report absence instead of failing")
	_ = probeCmd.MarkFlagRequired("url")
	_ = probeCmd.MarkFlagRequired("locator")
	return probeCmd
}

func findFor(cmd *cobra.Command, p *page.Page, by locator.By, index int, optional bool) (*element.Handle, error) {
	ctx := cmd.Context()
	switch {
	case optional:
		return p.FindOptional(ctx, by)
	case index >= 0:
		return p.FindIndexed(ctx, by, index)
	default:
		return p.Find(ctx, by)
	}
}

func describe(cmd *cobra.Command, h *element.Handle) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "handle:    %s\n", h)
	if !h.HasReference(ctx) {
		fmt.Fprintln(out, "status:    absent")
		return nil
	}
	fmt.Fprintf(out, "family:    %s\n", h.Family())

	tag, err := h.TagName(ctx)
	if err != nil {
		return err
	}
	text, err := h.Text(ctx)
	if err != nil {
		return err
	}
	displayed, err := h.IsDisplayed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "tag:       %s\n", tag)
	fmt.Fprintf(out, "text:      %q\n", text)
	fmt.Fprintf(out, "displayed: %t\n", displayed)
	return nil
}
