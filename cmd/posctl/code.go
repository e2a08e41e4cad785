package main

import (
	"fmt"

	"github.com/angelmondragon/retailpos-backend/internal/promotions"
	"github.com/angelmondragon/retailpos-backend/internal/vouchers"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newCodeCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "codes",
		Short: "Print sample voucher codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || count > 100 {
				return fmt.Errorf("--count must be between 1 and 100")
			}
			for i := 0; i < count; i++ {
				code, err := vouchers.GenerateCode()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 5, "how many codes")
	return cmd
}

func newDiscountCmd() *cobra.Command {
	var discountType, value, subtotal, currency string
	cmd := &cobra.Command{
		Use:   "discount",
		Short: "Show what a voucher takes off a subtotal",
		RunE: func(cmd *cobra.Command, args []string) error {
			dt, err := enums.ParseDiscountType(discountType)
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("invalid --value: %w", err)
			}
			base, err := decimal.NewFromString(subtotal)
			if err != nil {
				return fmt.Errorf("invalid --subtotal: %w", err)
			}
			off := vouchers.CalculateDiscount(models.Voucher{DiscountType: dt, DiscountValue: amount}, base)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s%s - %s%s = %s%s\n",
				promotions.FormatDiscount(dt, amount, currency),
				currency, base.StringFixed(2),
				currency, off.StringFixed(2),
				currency, base.Sub(off).StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&discountType, "type", string(enums.DiscountTypePercentage), "percentage|fixed_amount")
	cmd.Flags().StringVar(&value, "value", "", "discount value")
	cmd.Flags().StringVar(&subtotal, "subtotal", "", "basket subtotal")
	cmd.Flags().StringVar(&currency, "currency", "€", "currency symbol")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("subtotal")
	return cmd
}
