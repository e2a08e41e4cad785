package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/vouchers"
	"github.com/angelmondragon/retailpos-backend/pkg/auth"
	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "retailpos", ExpirationMinutes: 15}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestMintTokenCustomerDefaultsSubject(t *testing.T) {
	customerID := uuid.New()
	businessID := uuid.New()
	token, err := mintToken(testJWT(), time.Now(), mintFlags{
		role:     "Customer",
		business: businessID.String(),
		customer: customerID.String(),
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := auth.ParseAccessToken(testJWT(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != customerID {
		t.Fatalf("expected subject %s got %s", customerID, claims.SubjectID)
	}
	if claims.Role != enums.ActorRoleCustomer || claims.BusinessID != businessID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id")
	}
}

func TestMintTokenRejectsBadInput(t *testing.T) {
	cases := []mintFlags{
		{role: "owner", business: uuid.NewString()},
		{role: "staff", business: "nope"},
		{role: "staff", business: uuid.NewString(), branch: "nope"},
		{role: "customer", business: uuid.NewString()},
	}
	for _, flags := range cases {
		if _, err := mintToken(testJWT(), time.Now(), flags); err == nil {
			t.Fatalf("expected error for %+v", flags)
		}
	}
}

func TestCodesCommandPrintsValidCodes(t *testing.T) {
	out, err := run(t, "codes", "-n", "3")
	if err != nil {
		t.Fatalf("codes: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 3 {
		t.Fatalf("expected 3 codes got %q", out)
	}
	for _, code := range lines {
		if !vouchers.ValidCode(code) {
			t.Fatalf("invalid code %q", code)
		}
	}

	if _, err := run(t, "codes", "-n", "0"); err == nil {
		t.Fatal("expected error for zero count")
	}
}

func TestDiscountCommand(t *testing.T) {
	out, err := run(t, "discount", "--type", "fixed_amount", "--value", "5", "--subtotal", "3.50")
	if err != nil {
		t.Fatalf("discount: %v", err)
	}
	if strings.TrimSpace(out) != "€5.00 off: €3.50 - €3.50 = €0.00" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = run(t, "discount", "--value", "10", "--subtotal", "19.99", "--currency", "$")
	if err != nil {
		t.Fatalf("discount: %v", err)
	}
	if strings.TrimSpace(out) != "10% off: $19.99 - $2.00 = $17.99" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVoucherInputValidation(t *testing.T) {
	input, err := voucherInput("Coffee", "", "", "percentage", "15", 200, true)
	if err != nil {
		t.Fatalf("voucher input: %v", err)
	}
	if input.Description != nil || input.BranchID != nil || !input.IsActive {
		t.Fatalf("unexpected input %+v", input)
	}

	if _, err := voucherInput("Coffee", "", "", "bogo", "15", 200, true); err == nil {
		t.Fatal("expected error for unknown discount type")
	}
	if _, err := voucherInput("Coffee", "", "", "percentage", "abc", 200, true); err == nil {
		t.Fatal("expected error for bad value")
	}
}

func TestDLQEventFilter(t *testing.T) {
	filter, err := dlqEventFilter("")
	if err != nil || filter != "" {
		t.Fatalf("blank type should list everything, got %q %v", filter, err)
	}
	filter, err = dlqEventFilter("voucher_redeemed")
	if err != nil || filter != enums.EventVoucherRedeemed {
		t.Fatalf("unexpected filter %q %v", filter, err)
	}
	if _, err := run(t, "dlq", "list", "--type", "order_paid"); err == nil {
		t.Fatal("expected unknown event type to be rejected before connecting")
	}
}

func TestPrintDLQ(t *testing.T) {
	var out bytes.Buffer
	printDLQ(&out, nil)
	if !strings.Contains(out.String(), "empty") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	msg := "topic not found"
	eventID := uuid.New()
	printDLQ(&out, []models.OutboxDLQ{{
		EventID:      eventID,
		EventType:    enums.EventVoucherRedeemed,
		ErrorReason:  enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage: &msg,
		AttemptCount: 5,
		FailedAt:     time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}})
	line := out.String()
	for _, want := range []string{eventID.String(), "voucher_redeemed", "max_attempts", "attempts=5", "2026-05-01T10:00:00Z", msg} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}
