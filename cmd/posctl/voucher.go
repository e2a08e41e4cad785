package main

import (
	"fmt"
	"io"

	"github.com/angelmondragon/retailpos-backend/internal/promotions"
	"github.com/angelmondragon/retailpos-backend/internal/vouchers"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newVoucherCmd() *cobra.Command {
	var business string
	cmd := &cobra.Command{
		Use:   "voucher",
		Short: "Manage the voucher catalog of a business",
	}
	cmd.PersistentFlags().StringVar(&business, "business", "", "business id")
	_ = cmd.MarkPersistentFlagRequired("business")

	var status, search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List vouchers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			businessID, err := uuid.Parse(business)
			if err != nil {
				return fmt.Errorf("invalid --business: %w", err)
			}
			filter, err := enums.ParseVoucherStatusFilter(status)
			if err != nil {
				return err
			}
			return withVoucherService(cmd, func(svc vouchers.Service, currency string) error {
				rows, err := svc.List(cmd.Context(), vouchers.ListParams{BusinessID: businessID, Status: filter, Search: search})
				if err != nil {
					return err
				}
				printVouchers(cmd.OutOrStdout(), rows, currency)
				return nil
			})
		},
	}
	list.Flags().StringVar(&status, "status", "all", "active|inactive|all")
	list.Flags().StringVar(&search, "q", "", "name search")

	var (
		name, description, branch, discountType, value string
		points                                         int
		inactive                                       bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a voucher",
		RunE: func(cmd *cobra.Command, args []string) error {
			businessID, err := uuid.Parse(business)
			if err != nil {
				return fmt.Errorf("invalid --business: %w", err)
			}
			input, err := voucherInput(name, description, branch, discountType, value, points, !inactive)
			if err != nil {
				return err
			}
			return withVoucherService(cmd, func(svc vouchers.Service, currency string) error {
				created, err := svc.Create(cmd.Context(), businessID, input)
				if err != nil {
					return err
				}
				printVouchers(cmd.OutOrStdout(), []models.Voucher{*created}, currency)
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", "", "voucher name")
	create.Flags().StringVar(&description, "description", "", "description")
	create.Flags().StringVar(&branch, "branch", "", "restrict to a branch")
	create.Flags().IntVar(&points, "points", 0, "points cost")
	create.Flags().StringVar(&discountType, "type", string(enums.DiscountTypeFixedAmount), "percentage|fixed_amount")
	create.Flags().StringVar(&value, "value", "", "discount value")
	create.Flags().BoolVar(&inactive, "inactive", false, "create the voucher switched off")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("points")
	_ = create.MarkFlagRequired("value")

	var active bool
	activate := &cobra.Command{
		Use:   "activate <voucher-id>",
		Short: "Switch a voucher on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			businessID, err := uuid.Parse(business)
			if err != nil {
				return fmt.Errorf("invalid --business: %w", err)
			}
			voucherID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid voucher id: %w", err)
			}
			return withVoucherService(cmd, func(svc vouchers.Service, _ string) error {
				if err := svc.SetActive(cmd.Context(), businessID, voucherID, active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "voucher %s active=%t\n", voucherID, active)
				return nil
			})
		},
	}
	activate.Flags().BoolVar(&active, "active", true, "target state")

	cmd.AddCommand(list, create, activate)
	return cmd
}

func withVoucherService(cmd *cobra.Command, fn func(vouchers.Service, string) error) error {
	e, err := connect(cmd.Context(), true, false)
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := vouchers.NewService(vouchers.NewRepository(e.db.DB()), e.cfg.App.CurrencySymbol)
	if err != nil {
		return err
	}
	return fn(svc, e.cfg.App.CurrencySymbol)
}

func voucherInput(name, description, branch, discountType, value string, points int, active bool) (vouchers.VoucherInput, error) {
	dt, err := enums.ParseDiscountType(discountType)
	if err != nil {
		return vouchers.VoucherInput{}, err
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return vouchers.VoucherInput{}, fmt.Errorf("invalid --value: %w", err)
	}
	branchID, err := optionalUUID("branch", branch)
	if err != nil {
		return vouchers.VoucherInput{}, err
	}
	input := vouchers.VoucherInput{
		Name:          name,
		BranchID:      branchID,
		PointsCost:    points,
		DiscountType:  dt,
		DiscountValue: amount,
		IsActive:      active,
	}
	if description != "" {
		input.Description = &description
	}
	return input, nil
}

func printVouchers(out io.Writer, rows []models.Voucher, currency string) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "no vouchers")
		return
	}
	for _, v := range rows {
		state := "inactive"
		if v.IsActive {
			state = "active"
		}
		fmt.Fprintf(out, "%s  %-24s  %5d pts  %-14s  %s\n",
			v.ID, v.Name, v.PointsCost, promotions.FormatDiscount(v.DiscountType, v.DiscountValue, currency), state)
	}
}
