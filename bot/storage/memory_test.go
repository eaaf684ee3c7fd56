package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nosmoke/coachbot/bot/onboarding"
)

func TestMemoryGetAbsent(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryGetIsRepeatable(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	st := &onboarding.UserState{Day: 0, Step: onboarding.StepProductType, StartedAt: time.Now()}
	if err := m.Put(ctx, 7, st); err != nil {
		t.Fatal(err)
	}

	first, err := m.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if *first != *second {
		t.Fatalf("repeated Get differs: %+v vs %+v", first, second)
	}
}

func TestMemoryPutIsFullReplace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	old := &onboarding.UserState{Day: 0, Step: onboarding.StepSmokingDuration, YearsSmoking: "1–5 лет"}
	if err := m.Put(ctx, 7, old); err != nil {
		t.Fatal(err)
	}

	replacement := &onboarding.UserState{Day: 0, Step: onboarding.StepCigaretteCount}
	if err := m.Put(ctx, 7, replacement); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got.YearsSmoking != "" {
		t.Fatalf("old field survived replace: %+v", got)
	}
	if got.Step != onboarding.StepCigaretteCount {
		t.Fatalf("step = %q, want %q", got.Step, onboarding.StepCigaretteCount)
	}
}

func TestMemoryDoesNotAliasState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	st := &onboarding.UserState{Day: 0, Step: onboarding.StepSmokingDuration}
	if err := m.Put(ctx, 7, st); err != nil {
		t.Fatal(err)
	}
	st.Day = 9

	got, err := m.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if got.Day != 0 {
		t.Fatalf("stored state aliased caller's copy: day = %d", got.Day)
	}

	got.Step = onboarding.StepProgram
	again, err := m.Get(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if again.Step != onboarding.StepSmokingDuration {
		t.Fatalf("returned state aliased stored copy: step = %q", again.Step)
	}
}
