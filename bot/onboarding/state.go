package onboarding

import "time"

// Step identifies the question the user is expected to answer next.
// It is stored with the rest of the state and is authoritative for routing:
// inbound text is only matched against the vocabulary of the stored step.
type Step string

const (
	// StepSmokingDuration awaits the smoking-duration bucket (question 1).
	StepSmokingDuration Step = "smoking_duration"
	// StepCigaretteCount awaits the cigarettes-per-day bucket (question 2).
	StepCigaretteCount Step = "cigarette_count"
	// StepProductType awaits the product-type answer (question 3).
	StepProductType Step = "product_type"
	// StepPriorAttempts awaits the prior-quit-attempts answer (question 4).
	StepPriorAttempts Step = "prior_attempts"
	// StepProgram marks a user who finished the survey and entered day 1.
	StepProgram Step = "program"
)

// UserState is the durable record of one user's onboarding progress.
// It is serialized as a self-describing JSON blob; unknown fields are
// ignored on read so older records survive schema additions.
type UserState struct {
	Day              int        `json:"day"`
	Step             Step       `json:"step"`
	StartedAt        time.Time  `json:"started_at"`
	ProgramStartedAt *time.Time `json:"program_started_at,omitempty"`

	YearsSmoking           string `json:"years_smoking,omitempty"`
	CigarettesPerDayBucket string `json:"cigarettes_per_day_bucket,omitempty"`
	CigarettesPerDay       int    `json:"cigarettes_per_day,omitempty"`
	ProductType            string `json:"product_type,omitempty"`
	PriorQuitAttempts      string `json:"prior_quit_attempts,omitempty"`

	// Reserved program counters, seeded on day 1.
	CigarettesAvoided int     `json:"cigarettes_avoided"`
	MoneySaved        float64 `json:"money_saved"`

	// Status mirrors the current stage for humans reading the record;
	// routing never consults it.
	Status string `json:"status,omitempty"`
}

// Clone returns a deep copy so callers cannot alias stored state.
func (s *UserState) Clone() *UserState {
	if s == nil {
		return nil
	}
	out := *s
	if s.ProgramStartedAt != nil {
		t := *s.ProgramStartedAt
		out.ProgramStartedAt = &t
	}
	return &out
}
