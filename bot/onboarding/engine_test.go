package onboarding

import (
	"testing"
	"time"
)

func TestSurveyEndToEnd(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	res := Advance(nil, ButtonBegin, now)
	if res.Next != nil {
		t.Fatalf("begin button must not persist state, got %+v", res.Next)
	}
	if len(res.Prompts) != 1 || len(res.Prompts[0].Inline) != 1 {
		t.Fatalf("expected terms prompt with accept button, got %+v", res.Prompts)
	}

	res = AcceptTerms(nil, now)
	st := res.Next
	if st == nil {
		t.Fatal("terms acceptance must create state")
	}
	if st.Day != 0 || st.Step != StepSmokingDuration || !st.StartedAt.Equal(now) {
		t.Fatalf("unexpected initial state: %+v", st)
	}

	answers := []struct {
		text string
		step Step
	}{
		{"1–5 лет", StepCigaretteCount},
		{"10–14", StepProductType},
		{"Сигареты", StepPriorAttempts},
		{"Ни разу", StepProgram},
	}
	prevDay := st.Day
	for _, a := range answers {
		res = Advance(st, a.text, now)
		if res.Next == nil {
			t.Fatalf("answer %q at step %q did not advance", a.text, st.Step)
		}
		if res.Next.Step != a.step {
			t.Fatalf("answer %q: step = %q, want %q", a.text, res.Next.Step, a.step)
		}
		if res.Next.Day < prevDay {
			t.Fatalf("day decreased: %d -> %d", prevDay, res.Next.Day)
		}
		prevDay = res.Next.Day
		st = res.Next
	}

	if st.Day != 1 {
		t.Fatalf("day after survey = %d, want 1", st.Day)
	}
	if st.ProgramStartedAt == nil || !st.ProgramStartedAt.Equal(now) {
		t.Fatalf("program start not recorded: %+v", st.ProgramStartedAt)
	}
	if st.YearsSmoking != "1–5 лет" || st.CigarettesPerDay != 10 ||
		st.ProductType != "Сигареты" || st.PriorQuitAttempts != "Ни разу" ||
		st.CigarettesPerDayBucket != "10–14" {
		t.Fatalf("survey answers incomplete: %+v", st)
	}
	if len(res.Prompts) != 2 {
		t.Fatalf("expected intro + day-1 message, got %d prompts", len(res.Prompts))
	}
	if !res.Prompts[0].ClearKeyboard {
		t.Fatalf("intro must drop the survey keyboard, got %+v", res.Prompts[0])
	}
	if len(res.Prompts[1].Options) == 0 {
		t.Fatalf("day-1 message must carry the program keyboard, got %+v", res.Prompts[1])
	}
}

func TestDeriveDailyCount(t *testing.T) {
	cases := []struct {
		bucket string
		want   int
	}{
		{"1–9", 1},
		{"10–14", 10},
		{"15–19", 15},
		{"20 и больше", 20},
		{"мусор", 20},
	}
	for _, c := range cases {
		if got := DeriveDailyCount(c.bucket); got != c.want {
			t.Errorf("DeriveDailyCount(%q) = %d, want %d", c.bucket, got, c.want)
		}
	}
}

func TestUnmatchedInputIsNoOp(t *testing.T) {
	now := time.Now()
	st := &UserState{Day: 0, Step: StepCigaretteCount, StartedAt: now}

	// Vocabulary of a different step must not route here.
	for _, text := range []string{"Сигареты", "Ни разу", "привет", ButtonSOS} {
		res := Advance(st, text, now)
		if res.Next != nil || len(res.Prompts) != 0 || res.Action != ActionNone {
			t.Fatalf("text %q at step %q must be a no-op, got %+v", text, st.Step, res)
		}
	}
}

func TestAdvanceDoesNotMutateStored(t *testing.T) {
	now := time.Now()
	st := &UserState{Day: 0, Step: StepSmokingDuration, StartedAt: now}
	before := *st

	res := Advance(st, "Меньше года", now)
	if res.Next == nil {
		t.Fatal("valid answer did not advance")
	}
	if *st != before {
		t.Fatalf("input state mutated: %+v", st)
	}
}

func TestAcceptTermsKeepsExistingProgress(t *testing.T) {
	now := time.Now()
	st := &UserState{Day: 1, Step: StepProgram, StartedAt: now}

	res := AcceptTerms(st, now.Add(time.Hour))
	if res.Next != nil {
		t.Fatalf("repeated acceptance must not rewrite state, got %+v", res.Next)
	}
	if len(res.Prompts) != 1 {
		t.Fatalf("expected a resume prompt, got %+v", res.Prompts)
	}
}

func TestProgramButtons(t *testing.T) {
	st := &UserState{Day: 1, Step: StepProgram}

	if res := Advance(st, ButtonSOS, time.Now()); res.Action != ActionSOS || res.Next != nil {
		t.Fatalf("SOS press: got %+v", res)
	}
	if res := Advance(st, ButtonBooking, time.Now()); res.Action != ActionBooking || res.Next != nil {
		t.Fatalf("booking press: got %+v", res)
	}
}
