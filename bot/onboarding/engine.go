package onboarding

import (
	"strconv"
	"strings"
	"time"
)

// openBucketCeiling substitutes for count buckets without a numeric prefix.
const openBucketCeiling = 20

// Action signals work the caller must perform outside the state machine.
type Action int

const (
	ActionNone Action = iota
	// ActionSOS asks the caller to run a support request and relay the answer.
	ActionSOS
	// ActionBooking asks the caller to send the static counselor-booking reply.
	ActionBooking
)

// InlineOption describes a single inline button attached to a prompt.
type InlineOption struct {
	Text string
	Key  string
}

// Prompt is one outgoing message, transport-agnostic. Options are reply
// keyboard rows; Inline is an inline keyboard (one button per row).
// ClearKeyboard hides whatever reply keyboard the chat currently shows.
type Prompt struct {
	Text          string
	Markdown      bool
	Options       [][]string
	Inline        []InlineOption
	ClearKeyboard bool
}

// Result is the outcome of applying one inbound event to stored state.
// A nil Next means nothing to persist.
type Result struct {
	Next    *UserState
	Prompts []Prompt
	Action  Action
}

// Welcome is the reply to /start. It never touches state.
func Welcome() Prompt {
	return Prompt{
		Text:     welcomeText,
		Markdown: true,
		Options:  optionRows([]string{ButtonBegin}),
	}
}

// Terms is the reply to the begin button: agreement text plus the accept button.
func Terms() Prompt {
	return Prompt{
		Text:     termsText,
		Markdown: true,
		Inline:   []InlineOption{{Text: ButtonAccept, Key: CallbackAcceptTerms}},
	}
}

// AcceptTerms handles the terms-acceptance callback. A fresh record is
// created only when none exists; a repeated press re-sends the current
// step's question without resetting progress, keeping day monotonic.
func AcceptTerms(existing *UserState, now time.Time) Result {
	if existing != nil {
		return Result{Prompts: resumePrompts(existing)}
	}
	st := &UserState{
		Day:       0,
		Step:      StepSmokingDuration,
		StartedAt: now,
		Status:    string(StepSmokingDuration),
	}
	return Result{Next: st, Prompts: []Prompt{questionPrompt(StepSmokingDuration)}}
}

// Advance applies one inbound text message to the stored state. Text that
// does not belong to the current step's vocabulary is a no-op: no write,
// no reply.
func Advance(st *UserState, text string, now time.Time) Result {
	if st == nil {
		if text == ButtonBegin {
			return Result{Prompts: []Prompt{Terms()}}
		}
		return Result{}
	}

	switch st.Step {
	case StepSmokingDuration:
		if !oneOf(text, durationOptions) {
			return Result{}
		}
		next := st.Clone()
		next.YearsSmoking = text
		next.Step = StepCigaretteCount
		next.Status = string(StepCigaretteCount)
		return Result{Next: next, Prompts: []Prompt{questionPrompt(StepCigaretteCount)}}

	case StepCigaretteCount:
		if !oneOf(text, countOptions) {
			return Result{}
		}
		next := st.Clone()
		next.CigarettesPerDayBucket = text
		next.CigarettesPerDay = DeriveDailyCount(text)
		next.Step = StepProductType
		next.Status = string(StepProductType)
		return Result{Next: next, Prompts: []Prompt{questionPrompt(StepProductType)}}

	case StepProductType:
		if !oneOf(text, productOptions) {
			return Result{}
		}
		next := st.Clone()
		next.ProductType = text
		next.Step = StepPriorAttempts
		next.Status = string(StepPriorAttempts)
		return Result{Next: next, Prompts: []Prompt{questionPrompt(StepPriorAttempts)}}

	case StepPriorAttempts:
		if !oneOf(text, attemptOptions) {
			return Result{}
		}
		started := now
		next := st.Clone()
		next.PriorQuitAttempts = text
		next.Day = 1
		next.ProgramStartedAt = &started
		next.CigarettesAvoided = 0
		next.MoneySaved = 0
		next.Step = StepProgram
		next.Status = string(StepProgram)
		// The intro drops the survey keyboard; the program message
		// that follows installs its own.
		return Result{Next: next, Prompts: []Prompt{
			{Text: dayOneIntro, ClearKeyboard: true},
			programPrompt(),
		}}

	case StepProgram:
		switch text {
		case ButtonSOS:
			return Result{Action: ActionSOS}
		case ButtonBooking:
			return Result{Action: ActionBooking}
		}
		return Result{}
	}

	return Result{}
}

// DeriveDailyCount parses the numeric prefix of a count bucket label.
// Labels without a parsable prefix (the open-ended bucket) map to the ceiling.
func DeriveDailyCount(bucket string) int {
	head, _, _ := strings.Cut(bucket, "–")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n <= 0 {
		return openBucketCeiling
	}
	return n
}

func questionPrompt(step Step) Prompt {
	switch step {
	case StepSmokingDuration:
		return Prompt{Text: questionDuration, Options: optionRows(durationOptions)}
	case StepCigaretteCount:
		return Prompt{Text: questionCount, Options: optionRows(countOptions)}
	case StepProductType:
		return Prompt{Text: questionProduct, Options: optionRows(productOptions)}
	case StepPriorAttempts:
		return Prompt{Text: questionAttempts, Options: optionRows(attemptOptions)}
	}
	return programPrompt()
}

func programPrompt() Prompt {
	return Prompt{
		Text:    dayOneText,
		Options: [][]string{{ButtonSOS, ButtonBooking}},
	}
}

func resumePrompts(st *UserState) []Prompt {
	return []Prompt{questionPrompt(st.Step)}
}

func oneOf(text string, options []string) bool {
	for _, opt := range options {
		if opt == text {
			return true
		}
	}
	return false
}

// optionRows lays buttons out one per row, matching the survey keyboards.
func optionRows(labels []string) [][]string {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	return rows
}
