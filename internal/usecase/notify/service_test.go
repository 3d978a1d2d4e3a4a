package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki-notify/internal/config"
	"wiki-notify/internal/domain/entity"
	"wiki-notify/internal/handler/http/requestid"
	"wiki-notify/internal/infra/webhook"
)

// fakeFormatter renders the subject title as the message text.
type fakeFormatter struct {
	err error
}

func (f *fakeFormatter) Format(ev entity.NotificationEvent) (entity.OutboundMessage, error) {
	if f.err != nil {
		return entity.OutboundMessage{}, f.err
	}
	return entity.OutboundMessage{Text: fmt.Sprintf("%s %s", ev.Kind, ev.Subject.Title.FullText())}, nil
}

// fakeSender records every message it is asked to deliver.
type fakeSender struct {
	mu      sync.Mutex
	sent    []entity.OutboundMessage
	actors  []entity.User
	err     error
	block   chan struct{}
	started chan struct{}
	panics  bool
}

func (s *fakeSender) Send(ctx context.Context, msg entity.OutboundMessage, actor entity.User) error {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.panics {
		panic("sender exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	s.actors = append(s.actors, actor)
	return s.err
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestService(t *testing.T, mutate func(*config.Config), sender *fakeSender) *Service {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	svc := NewService(cfg, &fakeFormatter{}, sender)
	svc.adapter.now = func() time.Time { return fixedTime }
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})
	return svc
}

func TestService_Notify_Sent(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, nil, sender)

	res := svc.Notify(context.Background(), saveHook(EditUpdate))

	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, entity.KindPageSaved, res.Kind)
	assert.NoError(t, res.Err)
	assert.NotEmpty(t, res.RequestID)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "page_saved Help:FAQ", sender.sent[0].Text)
	assert.Equal(t, "Alice", sender.actors[0].Name)
}

func TestService_Notify_KeepsRequestID(t *testing.T) {
	svc := newTestService(t, nil, &fakeSender{})
	ctx := requestid.WithRequestID(context.Background(), "req-123")

	res := svc.Notify(ctx, saveHook(EditUpdate))
	assert.Equal(t, "req-123", res.RequestID)
}

func TestService_Notify_Outcomes(t *testing.T) {
	nullEdit := saveHook(EditUpdate)
	nullEdit.NullEdit = true

	tests := []struct {
		name        string
		mutate      func(*config.Config)
		hook        Hook
		sendErr     error
		wantOutcome Outcome
		wantSent    int
	}{
		{
			name:        "disabled kind",
			mutate:      func(c *config.Config) { c.Events.PageSaved = false },
			hook:        saveHook(EditUpdate),
			wantOutcome: OutcomeDisabled,
		},
		{
			name:        "null edit",
			hook:        nullEdit,
			wantOutcome: OutcomeNullEdit,
		},
		{
			name:        "ignored minor edit",
			mutate:      func(c *config.Config) { c.Details.IgnoreMinorEdits = true },
			hook:        saveHook(EditUpdate | EditMinor),
			wantOutcome: OutcomeMinorEdit,
		},
		{
			name:        "excluded namespace",
			mutate:      func(c *config.Config) { c.Exclusions.Namespaces = []string{"Help"} },
			hook:        saveHook(EditUpdate),
			wantOutcome: OutcomeExcluded,
		},
		{
			name:   "move into excluded namespace",
			mutate: func(c *config.Config) { c.Exclusions.Namespaces = []string{"Archive"} },
			hook: PageMoveHook{
				From: PageRef{Title: "Plan"},
				To:   PageRef{Namespace: "Archive", Title: "Plan"},
				User: alice(),
			},
			wantOutcome: OutcomeExcluded,
		},
		{
			name:   "move onto excluded title prefix",
			mutate: func(c *config.Config) { c.Exclusions.Titles = []string{"Archive"} },
			hook: PageMoveHook{
				From: PageRef{Title: "Plan"},
				To:   PageRef{Title: "Archive/Plan"},
				User: alice(),
			},
			wantOutcome: OutcomeExcluded,
		},
		{
			name:        "malformed payload",
			hook:        PageDeleteHook{User: alice()},
			wantOutcome: OutcomeMalformed,
		},
		{
			name:        "suppressed by permission",
			hook:        saveHook(EditUpdate),
			sendErr:     webhook.ErrSuppressedByPermission,
			wantOutcome: OutcomePermission,
			wantSent:    1,
		},
		{
			name:        "no webhook configured",
			hook:        saveHook(EditUpdate),
			sendErr:     webhook.ErrNoWebhookURL,
			wantOutcome: OutcomeNoWebhook,
			wantSent:    1,
		},
		{
			name:        "delivery failure",
			hook:        saveHook(EditUpdate),
			sendErr:     &webhook.ServerError{StatusCode: 502},
			wantOutcome: OutcomeFailed,
			wantSent:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.sendErr}
			svc := newTestService(t, tt.mutate, sender)

			res := svc.Notify(context.Background(), tt.hook)

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantSent, sender.count())
			assert.Error(t, res.Err)
		})
	}
}

// validHooks holds one well-formed callback per event kind.
var validHooks = map[entity.Kind]Hook{
	entity.KindPageSaved:   saveHook(EditUpdate),
	entity.KindPageCreated: saveHook(EditNew),
	entity.KindPageDeleted: PageDeleteHook{Page: PageRef{Title: "Old"}, User: alice(), PageID: 7},
	entity.KindPageMoved: PageMoveHook{
		From: PageRef{Title: "Plan"},
		To:   PageRef{Namespace: "Project", Title: "Plan"},
		User: alice(),
	},
	entity.KindPageProtected: PageProtectHook{Page: PageRef{Title: "Main Page"}, User: alice(), Protect: true},
	entity.KindUserCreated:   UserCreateHook{User: entity.User{Name: "Bob"}},
	entity.KindUserBlocked:   UserBlockHook{Performer: alice(), Target: entity.User{Name: "Bob"}, Expiry: "infinite"},
	entity.KindFileUploaded: FileUploadHook{
		User: alice(),
		File: UploadedFile{Name: "Logo.png", MimeType: "image/png", Size: 2048},
	},
	entity.KindUserGroupsChanged: UserGroupsHook{
		Performer: alice(),
		User:      entity.User{Name: "Bob"},
		Added:     []string{"sysop"},
		Groups:    []string{"sysop"},
	},
}

// setToggle switches the enable flag of kind.
func setToggle(e *config.EventsConfig, kind entity.Kind, on bool) {
	switch kind {
	case entity.KindPageSaved:
		e.PageSaved = on
	case entity.KindPageCreated:
		e.PageCreated = on
	case entity.KindPageDeleted:
		e.PageDeleted = on
	case entity.KindPageMoved:
		e.PageMoved = on
	case entity.KindPageProtected:
		e.PageProtected = on
	case entity.KindUserCreated:
		e.UserCreated = on
	case entity.KindUserBlocked:
		e.UserBlocked = on
	case entity.KindFileUploaded:
		e.FileUploaded = on
	case entity.KindUserGroupsChanged:
		e.UserGroupsChanged = on
	}
}

func TestService_Notify_DisabledKinds(t *testing.T) {
	require.Len(t, validHooks, len(entity.AllKinds))

	for _, kind := range entity.AllKinds {
		t.Run(string(kind), func(t *testing.T) {
			hook, ok := validHooks[kind]
			require.True(t, ok)
			require.Equal(t, kind, hook.Kind())

			// Only this kind's toggle is off.
			sender := &fakeSender{}
			svc := newTestService(t, func(c *config.Config) {
				for _, k := range entity.AllKinds {
					setToggle(&c.Events, k, k != kind)
				}
			}, sender)

			res := svc.Notify(context.Background(), hook)
			assert.Equal(t, OutcomeDisabled, res.Outcome)
			assert.Equal(t, kind, res.Kind)
			assert.Equal(t, 0, sender.count())

			// Switched back on, the same callback is sent.
			enabled := &fakeSender{}
			svc = newTestService(t, func(c *config.Config) { setToggle(&c.Events, kind, true) }, enabled)
			res = svc.Notify(context.Background(), hook)
			assert.Equal(t, OutcomeSent, res.Outcome)
			assert.Equal(t, 1, enabled.count())
		})
	}
}

func TestService_Notify_ExclusionReason(t *testing.T) {
	svc := newTestService(t, func(c *config.Config) {
		c.Exclusions.IncludeOnly = []string{"Project:"}
	}, &fakeSender{})

	res := svc.Notify(context.Background(), saveHook(EditUpdate))

	var exclusion *ExclusionError
	require.ErrorAs(t, res.Err, &exclusion)
	assert.Equal(t, ReasonNotIncluded, exclusion.Reason)
	assert.ErrorIs(t, res.Err, ErrSkipped)
}

func TestService_Notify_FormatError(t *testing.T) {
	sender := &fakeSender{}
	cfg := config.Default()
	svc := NewService(cfg, &fakeFormatter{err: errors.New("boom")}, sender)

	res := svc.Notify(context.Background(), saveHook(EditUpdate))

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, 0, sender.count())
}

func TestService_Notify_RecordsOutcome(t *testing.T) {
	svc := newTestService(t, func(c *config.Config) { c.Events.UserBlocked = false }, &fakeSender{})
	counter := notificationEventsTotal.WithLabelValues(string(entity.KindUserBlocked), string(OutcomeDisabled))
	before := testutil.ToFloat64(counter)

	svc.Notify(context.Background(), UserBlockHook{Performer: alice(), Target: entity.User{Name: "Bob"}})

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestService_Async_QueuesAndDelivers(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, func(c *config.Config) { c.Dispatch.Async = true }, sender)

	res := svc.Notify(context.Background(), saveHook(EditUpdate))
	assert.Equal(t, OutcomeQueued, res.Outcome)
	assert.NoError(t, res.Err)

	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestService_Async_SkipsStaySynchronous(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, func(c *config.Config) {
		c.Dispatch.Async = true
		c.Events.PageSaved = false
	}, sender)

	res := svc.Notify(context.Background(), saveHook(EditUpdate))
	assert.Equal(t, OutcomeDisabled, res.Outcome)
}

func TestService_Async_RespectsConcurrencyLimit(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{}), started: make(chan struct{}, 10)}
	svc := newTestService(t, func(c *config.Config) {
		c.Dispatch.Async = true
		c.Dispatch.MaxConcurrent = 2
		c.Dispatch.QueueTimeout = config.Duration(time.Second)
	}, sender)

	for i := 0; i < 4; i++ {
		svc.Notify(context.Background(), saveHook(EditUpdate))
	}

	// Two slots fill, the rest wait on the pool.
	<-sender.started
	<-sender.started
	select {
	case <-sender.started:
		t.Fatal("more dispatches started than the pool allows")
	case <-time.After(100 * time.Millisecond):
	}

	close(sender.block)
	assert.Eventually(t, func() bool { return sender.count() == 4 }, 2*time.Second, 10*time.Millisecond)
}

func TestService_Async_DropsWhenPoolStaysFull(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{}), started: make(chan struct{}, 10)}
	svc := newTestService(t, func(c *config.Config) {
		c.Dispatch.Async = true
		c.Dispatch.MaxConcurrent = 1
		c.Dispatch.QueueTimeout = config.Duration(50 * time.Millisecond)
	}, sender)
	dropped := notificationDroppedTotal.WithLabelValues("pool_full")
	before := testutil.ToFloat64(dropped)

	svc.Notify(context.Background(), saveHook(EditUpdate))
	<-sender.started
	svc.Notify(context.Background(), saveHook(EditUpdate))

	assert.Eventually(t, func() bool { return testutil.ToFloat64(dropped) == before+1 }, time.Second, 10*time.Millisecond)
	close(sender.block)
	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestService_Async_RecoversFromPanic(t *testing.T) {
	sender := &fakeSender{panics: true}
	svc := newTestService(t, func(c *config.Config) { c.Dispatch.Async = true }, sender)

	res := svc.Notify(context.Background(), saveHook(EditUpdate))
	assert.Equal(t, OutcomeQueued, res.Outcome)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, svc.Shutdown(ctx))
}

func TestService_Shutdown_WaitsForInFlight(t *testing.T) {
	sender := &fakeSender{block: make(chan struct{}), started: make(chan struct{}, 1)}
	svc := newTestService(t, func(c *config.Config) { c.Dispatch.Async = true }, sender)

	svc.Notify(context.Background(), saveHook(EditUpdate))
	<-sender.started

	// Shutdown cancels the dispatch context, which releases the blocked send.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(ctx))
	assert.Equal(t, 0, sender.count())
}

func TestService_Shutdown_Timeout(t *testing.T) {
	svc := newTestService(t, nil, &fakeSender{})
	svc.wg.Add(1)
	defer svc.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Shutdown(ctx), context.DeadlineExceeded)
}

func TestDispatchOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSent, dispatchOutcome(nil))
	assert.Equal(t, OutcomePermission, dispatchOutcome(fmt.Errorf("wrap: %w", webhook.ErrSuppressedByPermission)))
	assert.Equal(t, OutcomeNoWebhook, dispatchOutcome(webhook.ErrNoWebhookURL))
	assert.Equal(t, OutcomeFailed, dispatchOutcome(context.DeadlineExceeded))
}
