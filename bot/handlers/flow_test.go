package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/nosmoke/coachbot/bot/onboarding"
	"github.com/nosmoke/coachbot/bot/storage"
	tghelpers "github.com/nosmoke/coachbot/core/telegram/helpers"
	"github.com/nosmoke/coachbot/core/telegram/sender"
)

// sendRecorder implements the subset of tele.Context the flow touches
// and records every outbound message text.
type sendRecorder struct {
	tele.Context

	user *tele.User
	text string

	mu   sync.Mutex
	vals map[string]interface{}
	sent []string
}

func newSendRecorder(userID int64, text string) *sendRecorder {
	return &sendRecorder{
		user: &tele.User{ID: userID},
		text: text,
		vals: make(map[string]interface{}),
	}
}

func (r *sendRecorder) Update() tele.Update { return tele.Update{ID: 1} }
func (r *sendRecorder) Sender() *tele.User  { return r.user }
func (r *sendRecorder) Chat() *tele.Chat    { return &tele.Chat{ID: r.user.ID} }
func (r *sendRecorder) Text() string        { return r.text }

func (r *sendRecorder) Get(key string) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vals[key]
}

func (r *sendRecorder) Set(key string, val interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals[key] = val
}

func (r *sendRecorder) Send(what interface{}, _ ...interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if text, ok := what.(string); ok {
		r.sent = append(r.sent, text)
	}
	return nil
}

func (r *sendRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

type stagedStore struct {
	st     *onboarding.UserState
	getErr error
	putErr error
}

func (s *stagedStore) Get(ctx context.Context, userID int64) (*onboarding.UserState, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.st, nil
}

func (s *stagedStore) Put(ctx context.Context, userID int64, st *onboarding.UserState) error {
	return s.putErr
}

type failingStore struct {
	err error
}

func (s *failingStore) Get(ctx context.Context, userID int64) (*onboarding.UserState, error) {
	return nil, s.err
}

func (s *failingStore) Put(ctx context.Context, userID int64, st *onboarding.UserState) error {
	return nil
}

func TestLoadStateSoftFailsOnReadFaults(t *testing.T) {
	cases := map[string]error{
		"absent":   storage.ErrNotFound,
		"decode":   &storage.DecodeError{UserID: 7, Err: errors.New("bad json")},
		"io fault": errors.New("connection reset"),
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			f := NewFlow(&failingStore{err: err}, nil)
			if st := f.loadState(context.Background(), 7); st != nil {
				t.Fatalf("read fault must yield fresh state, got %+v", st)
			}
		})
	}
}

func TestLoadStateReturnsStored(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	want := &onboarding.UserState{Day: 1, Step: onboarding.StepProgram, StartedAt: time.Now()}
	if err := mem.Put(ctx, 7, want); err != nil {
		t.Fatal(err)
	}

	f := NewFlow(mem, nil)
	got := f.loadState(ctx, 7)
	if got == nil || got.Step != onboarding.StepProgram || got.Day != 1 {
		t.Fatalf("loadState = %+v", got)
	}
}

func TestWriteFaultNotifiesUser(t *testing.T) {
	rec := newSendRecorder(7, "1–5 лет")
	store := &stagedStore{
		st:     &onboarding.UserState{Step: onboarding.StepSmokingDuration, StartedAt: time.Now()},
		putErr: errors.New("disk full"),
	}
	f := NewFlow(store, nil)

	handled, err := f.HandleText(rec)
	if !handled {
		t.Fatal("valid survey answer must be handled")
	}
	if err == nil {
		t.Fatal("write fault must surface to the router")
	}
	if got := rec.messages(); len(got) != 1 || got[0] != onboarding.ErrorText {
		t.Fatalf("user must get a failure reply, sent %q", got)
	}
}

func TestAcceptTermsWriteFaultNotifiesUser(t *testing.T) {
	rec := newSendRecorder(7, "")
	store := &stagedStore{getErr: storage.ErrNotFound, putErr: errors.New("pool exhausted")}
	f := NewFlow(store, nil)

	if err := f.HandleAcceptTerms(rec); err == nil {
		t.Fatal("write fault must surface to the router")
	}
	if got := rec.messages(); len(got) != 1 || got[0] != onboarding.ErrorText {
		t.Fatalf("user must get a failure reply, sent %q", got)
	}
}

func TestCompletionRepliesKeepOrder(t *testing.T) {
	disp := sender.NewDispatcher(sender.Options{Workers: 4, QueueSize: 16})
	tghelpers.SetDispatcher(disp)
	defer tghelpers.SetDispatcher(nil)

	ctx := context.Background()
	mem := storage.NewMemory()
	seed := &onboarding.UserState{Step: onboarding.StepPriorAttempts, StartedAt: time.Now()}
	if err := mem.Put(ctx, 7, seed); err != nil {
		t.Fatal(err)
	}

	rec := newSendRecorder(7, "Ни разу")
	f := NewFlow(mem, nil)
	handled, err := f.HandleText(rec)
	if !handled || err != nil {
		t.Fatalf("HandleText = %v, %v", handled, err)
	}
	disp.Close()

	got := rec.messages()
	if len(got) != 2 {
		t.Fatalf("survey completion must send two replies, sent %q", got)
	}
	if !strings.HasPrefix(got[0], "✅") || !strings.HasPrefix(got[1], "📅") {
		t.Fatalf("completion replies out of order: %q", got)
	}
}

func TestPromptMarkup(t *testing.T) {
	inline := promptMarkup(onboarding.Terms())
	if inline == nil || len(inline.InlineKeyboard) != 1 {
		t.Fatalf("terms prompt must carry one inline button, got %+v", inline)
	}

	reply := promptMarkup(onboarding.Welcome())
	if reply == nil || len(reply.ReplyKeyboard) != 1 {
		t.Fatalf("welcome prompt must carry the begin button, got %+v", reply)
	}

	if m := promptMarkup(onboarding.Prompt{Text: "plain"}); m != nil {
		t.Fatalf("plain prompt must have no markup, got %+v", m)
	}

	hide := promptMarkup(onboarding.Prompt{Text: "done", ClearKeyboard: true})
	if hide == nil || !hide.RemoveKeyboard {
		t.Fatalf("clearing prompt must hide the keyboard, got %+v", hide)
	}
}
