package entities

import (
	"errors"
	"testing"
)

func TestPaymentState_TransitionTo(t *testing.T) {
	cases := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusPending, PaymentStatusSucceeded, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusPending, false},
		{PaymentStatusSucceeded, PaymentStatusPending, false},
		{PaymentStatusSucceeded, PaymentStatusFailed, false},
		{PaymentStatusSucceeded, PaymentStatusSucceeded, false},
		{PaymentStatusFailed, PaymentStatusPending, true},
		{PaymentStatusFailed, PaymentStatusSucceeded, false},
		{PaymentStatusFailed, PaymentStatusFailed, false},
	}

	for _, tc := range cases {
		state := PaymentState{Status: tc.from, Active: true}
		next, err := state.TransitionTo(tc.to)
		if tc.allowed {
			if err != nil {
				t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
			}
			if next.Status != tc.to || !next.Active {
				t.Fatalf("%s -> %s: unexpected state %+v", tc.from, tc.to, next)
			}
			continue
		}

		if !errors.Is(err, ErrStatusTransition) {
			t.Fatalf("%s -> %s: expected ErrStatusTransition, got %v", tc.from, tc.to, err)
		}
		var transitionErr *StatusTransitionError
		if !errors.As(err, &transitionErr) || transitionErr.From != tc.from || transitionErr.To != tc.to {
			t.Fatalf("%s -> %s: unexpected error detail %+v", tc.from, tc.to, err)
		}
		if next != state {
			t.Fatalf("%s -> %s: state must be unchanged on error, got %+v", tc.from, tc.to, next)
		}
	}
}

func TestPaymentState_TransitionTo_Inactive(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentStatusPending, PaymentStatusFailed, PaymentStatusSucceeded} {
		state := PaymentState{Status: status, Active: false}
		_, err := state.TransitionTo(PaymentStatusSucceeded)
		if !errors.Is(err, ErrStatusTransition) {
			t.Fatalf("expected ErrStatusTransition for inactive %s, got %v", status, err)
		}
		if err.Error() != "inactive record cannot change status" {
			t.Fatalf("unexpected message: %q", err.Error())
		}
	}
}

func TestPaymentState_Deactivate(t *testing.T) {
	next, err := NewPaymentState().Deactivate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Active || next.Status != PaymentStatusPending {
		t.Fatalf("unexpected state: %+v", next)
	}

	for _, status := range []PaymentStatus{PaymentStatusSucceeded, PaymentStatusFailed} {
		state := PaymentState{Status: status, Active: true}
		got, err := state.Deactivate()
		if !errors.Is(err, ErrStatusTransition) {
			t.Fatalf("expected ErrStatusTransition for %s, got %v", status, err)
		}
		if got != state {
			t.Fatalf("state must be unchanged, got %+v", got)
		}
	}
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus(" succeeded ")
	if err != nil || got != PaymentStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %q err=%v", got, err)
	}
	if _, err := ParsePaymentStatus("done"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	got, err := ParsePaymentMethod("credit_card")
	if err != nil || got != PaymentMethodCreditCard {
		t.Fatalf("expected CREDIT_CARD, got %q err=%v", got, err)
	}
	if !got.IsCard() || PaymentMethodPix.IsCard() || PaymentMethodBoleto.IsCard() {
		t.Fatalf("unexpected IsCard results")
	}
	if _, err := ParsePaymentMethod("cash"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}
