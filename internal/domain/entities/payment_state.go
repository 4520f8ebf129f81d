package entities

import (
	"errors"
	"fmt"
	"strings"
)

// PaymentStatus represents where a payment is in its processing lifecycle.
//
//   - PENDING is the initial status.
//   - SUCCEEDED is terminal.
//   - FAILED can be moved back to PENDING for a retry.

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusSucceeded, PaymentStatusFailed},
	PaymentStatusSucceeded: nil,
	PaymentStatusFailed:    {PaymentStatusPending},
}

func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// ParsePaymentStatus resolves a status name case-insensitively.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	candidate := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return candidate, nil
}

// CanTransitionTo reports whether the transition table allows s -> next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var ErrStatusTransition = errors.New("invalid status transition")

// StatusTransitionError describes a rejected status change or deletion.
type StatusTransitionError struct {
	From   PaymentStatus
	To     PaymentStatus
	Reason string
}

func (e *StatusTransitionError) Error() string {
	return e.Reason
}

func (e *StatusTransitionError) Is(target error) bool {
	return target == ErrStatusTransition
}

// PaymentState is the mutable part of a payment: its status and the logical
// deletion flag.
type PaymentState struct {
	Status PaymentStatus
	Active bool
}

// NewPaymentState returns the state every payment is created with.
func NewPaymentState() PaymentState {
	return PaymentState{Status: PaymentStatusPending, Active: true}
}

// TransitionTo returns the state after moving to next, or a
// *StatusTransitionError when the move is not allowed.
func (s PaymentState) TransitionTo(next PaymentStatus) (PaymentState, error) {
	if !s.Active {
		return s, &StatusTransitionError{From: s.Status, To: next, Reason: "inactive record cannot change status"}
	}

	if !s.Status.CanTransitionTo(next) {
		return s, &StatusTransitionError{From: s.Status, To: next, Reason: describeRejectedTransition(s.Status, next)}
	}

	return PaymentState{Status: next, Active: s.Active}, nil
}

// Deactivate performs the logical deletion. Only pending payments can be deleted.
func (s PaymentState) Deactivate() (PaymentState, error) {
	if s.Status != PaymentStatusPending {
		return s, &StatusTransitionError{
			From:   s.Status,
			Reason: fmt.Sprintf("only %s payments can be deleted; current status is %s", PaymentStatusPending, s.Status),
		}
	}
	return PaymentState{Status: s.Status, Active: false}, nil
}

func describeRejectedTransition(from, to PaymentStatus) string {
	allowed := paymentTransitions[from]
	switch {
	case !from.IsValid():
		return fmt.Sprintf("invalid current status %q", from)
	case len(allowed) == 0:
		return fmt.Sprintf("invalid transition %s -> %s: %s is final and cannot be changed", from, to, from)
	default:
		names := make([]string, 0, len(allowed))
		for _, a := range allowed {
			names = append(names, string(a))
		}
		return fmt.Sprintf("invalid transition %s -> %s: %s can only move to %s", from, to, from, strings.Join(names, " or "))
	}
}
