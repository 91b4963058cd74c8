package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

func newListCmd(e *env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes, optionally filtered by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, q := range e.service.ByCategory(cmd.Context(), category) {
				fmt.Fprintln(e.out, q.Format())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", domain.CategoryAll, "category to show")

	return cmd
}

func newAddCmd(e *env) *cobra.Command {
	var text, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote",
		Long: `Add stores a new quote and, when sync.publish is enabled, posts it to
the remote quote source. A failed publish is reported but keeps the quote.

Example:
  quotectl add --text "Stay curious." --category Learning`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := e.service.Add(cmd.Context(), text, category)
			if err != nil {
				return err
			}

			fmt.Fprintf(e.out, "added %s\n", result.Quote.Format())

			if result.PublishErr != nil {
				fmt.Fprintf(e.errOut, "warning: quote not published: %v\n", result.PublishErr)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "quote text (required)")
	cmd.Flags().StringVar(&category, "category", "", "quote category (required)")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRandomCmd(e *env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random quote",
		Long:  `Random picks a quote from the given category, or from the selected category when none is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := e.service.Random(cmd.Context(), category)
			if err != nil {
				return err
			}

			fmt.Fprintln(e.out, q.Format())

			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category to draw from (default: selected category)")

	return cmd
}

func newCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories, marking the selected one",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			selected := e.service.SelectedCategory()

			for _, c := range append([]string{domain.CategoryAll}, e.service.Categories()...) {
				marker := " "
				if c == selected {
					marker = "*"
				}

				fmt.Fprintf(e.out, "%s %s\n", marker, c)
			}

			return nil
		},
	}
}

func newSelectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "select CATEGORY",
		Short: "Persist the selected category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.service.SelectCategory(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(e.out, "selected %s\n", e.service.SelectedCategory())

			return nil
		},
	}
}
