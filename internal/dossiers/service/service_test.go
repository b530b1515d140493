package service

import (
	"context"
	"testing"

	"github.com/N0urDEV/Formalitys-sub001/internal/dossiers/repository"
	"github.com/N0urDEV/Formalitys-sub001/platform/apperr"

	"github.com/google/uuid"
)

func TestTransitionTable(t *testing.T) {
	allowed := []struct{ from, to string }{
		{repository.StatusDraft, repository.StatusPendingPayment},
		{repository.StatusDraft, repository.StatusCancelled},
		{repository.StatusPendingPayment, repository.StatusPaid},
		{repository.StatusPendingPayment, repository.StatusCancelled},
		{repository.StatusPaid, repository.StatusInProgress},
		{repository.StatusInProgress, repository.StatusCompleted},
	}
	for _, tc := range allowed {
		if !transitionAllowed(tc.from, tc.to) {
			t.Errorf("transition %s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to string }{
		{repository.StatusDraft, repository.StatusPaid},
		{repository.StatusPaid, repository.StatusCancelled},
		{repository.StatusCompleted, repository.StatusInProgress},
		{repository.StatusCancelled, repository.StatusDraft},
		{repository.StatusPaid, repository.StatusDraft},
	}
	for _, tc := range forbidden {
		if transitionAllowed(tc.from, tc.to) {
			t.Errorf("transition %s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestAdvanceStepRejectsOutOfRange(t *testing.T) {
	// Bounds are checked before any persistence access.
	svc := &Service{}

	cases := []struct {
		dossierType string
		step        int
	}{
		{"company", 0},
		{"company", 6},
		{"tourism", 5},
		{"tourism", -1},
	}
	for _, tc := range cases {
		err := svc.AdvanceStep(context.Background(), tc.dossierType, uuid.New(), uuid.New(), tc.step)
		if err == nil {
			t.Fatalf("AdvanceStep(%s, %d) expected error", tc.dossierType, tc.step)
		}
		if apperr.GetKind(err) != apperr.KindValidation {
			t.Fatalf("AdvanceStep(%s, %d) kind = %v, want validation", tc.dossierType, tc.step, apperr.GetKind(err))
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"DRAFT", "PENDING_PAYMENT", "PAID", "IN_PROGRESS", "COMPLETED", "CANCELLED"} {
		if !repository.ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if repository.ValidStatus("ARCHIVED") {
		t.Error("ValidStatus(ARCHIVED) = true")
	}
}
