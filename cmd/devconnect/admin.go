package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"devconnect/internal/config"
	"devconnect/internal/service"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			cmd.Println("schema is up to date")
			return nil
		},
	}
}

func newProductCmd() *cobra.Command {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the shop catalog",
	}

	var (
		name        string
		description string
		price       string
		discount    int
		image       string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := parseCents(price)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, repos, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			in := service.ProductInput{
				Name:            name,
				Description:     description,
				PriceCents:      cents,
				DiscountPercent: discount,
			}
			if image != "" {
				in.ImagePath = &image
			}
			p, err := service.NewCatalogService(repos.products).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			cmd.Printf("added product %d: %s (%s, sale %s)\n", p.ID, p.Name, formatCents(p.PriceCents), formatCents(p.SalePriceCents))
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "product name (required)")
	addCmd.Flags().StringVar(&description, "description", "", "product description")
	addCmd.Flags().StringVar(&price, "price", "", "price, e.g. 19.99 (required)")
	addCmd.Flags().IntVar(&discount, "discount", 0, "discount percent, 0 to 90")
	addCmd.Flags().StringVar(&image, "image", "", "image path under the uploads directory")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("price")

	productCmd.AddCommand(addCmd)
	return productCmd
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// parseCents reads a non-negative decimal amount with at most two
// fractional digits.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("price is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("price %q has more than two decimals", s)
	}
	cents := d.Shift(2)
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("price %q is too large", s)
	}
	return cents.IntPart(), nil
}

func formatCents(c int64) string {
	return decimal.New(c, -2).StringFixed(2)
}
