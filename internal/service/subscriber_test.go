package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/facilitair/site-server-go/internal/errors"
	"github.com/facilitair/site-server-go/internal/mail"
	"github.com/facilitair/site-server-go/internal/model"
	"github.com/facilitair/site-server-go/internal/util"
)

type mockSubscriberRepo struct {
	mock.Mock
}

func (m *mockSubscriberRepo) FindByEmailHash(ctx context.Context, emailHash string) (*model.Subscriber, error) {
	args := m.Called(ctx, emailHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscriber), args.Error(1)
}

func (m *mockSubscriberRepo) FindByConfirmationToken(ctx context.Context, token string) (*model.Subscriber, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscriber), args.Error(1)
}

func (m *mockSubscriberRepo) FindByUnsubscribeToken(ctx context.Context, token string) (*model.Subscriber, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscriber), args.Error(1)
}

func (m *mockSubscriberRepo) FindAll(ctx context.Context, limit, offset int) ([]model.Subscriber, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Subscriber), args.Int(1), args.Error(2)
}

func (m *mockSubscriberRepo) FindConfirmed(ctx context.Context) ([]model.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Subscriber), args.Error(1)
}

func (m *mockSubscriberRepo) Create(ctx context.Context, params model.CreateSubscriberParams) (*model.Subscriber, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscriber), args.Error(1)
}

func (m *mockSubscriberRepo) MarkConfirmed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSubscriberRepo) MarkSurveyCompleted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSubscriberRepo) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriberRepo) DeleteByUnsubscribeToken(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSubscriberRepo) Stats(ctx context.Context) (*model.SubscriberStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubscriberStats), args.Error(1)
}

type mockSurveyRepo struct {
	mock.Mock
}

func (m *mockSurveyRepo) Create(ctx context.Context, params model.CreateSurveyParams) (*model.Survey, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Survey), args.Error(1)
}

func (m *mockSurveyRepo) FindResponses(ctx context.Context) ([]model.SurveyResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SurveyResponse), args.Error(1)
}

// fakeMailer records sends without touching the network. Safe for the
// background goroutines Subscribe and Confirm spawn.
type fakeMailer struct {
	mu            sync.Mutex
	confirmations []string
	surveys       []string
	announcements []string
	failFor       map[string]bool
	sent          chan struct{}
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		failFor: make(map[string]bool),
		sent:    make(chan struct{}, 16),
	}
}

func (f *fakeMailer) SendConfirmation(ctx context.Context, email, token string) error {
	f.mu.Lock()
	f.confirmations = append(f.confirmations, email)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}

func (f *fakeMailer) SendSurveyInvite(ctx context.Context, email, token string) error {
	f.mu.Lock()
	f.surveys = append(f.surveys, email)
	f.mu.Unlock()
	f.sent <- struct{}{}
	return nil
}

func (f *fakeMailer) SendAnnouncement(ctx context.Context, email, token string, a mail.Announcement) error {
	f.mu.Lock()
	fail := f.failFor[email]
	if !fail {
		f.announcements = append(f.announcements, email)
	}
	f.mu.Unlock()
	if fail {
		return apperrors.New(apperrors.ErrCodeExternal, "send failed")
	}
	return nil
}

func (f *fakeMailer) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-f.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background send")
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("creates subscriber and sends confirmation", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		mailer := newFakeMailer()

		subscribers.On("FindByEmailHash", mock.Anything, util.HashSecret("user@example.com")).
			Return(nil, nil)
		subscribers.On("Create", mock.Anything, mock.AnythingOfType("model.CreateSubscriberParams")).
			Return(&model.Subscriber{ID: 1, Email: "user@example.com"}, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: mailer}
		already, err := svc.Subscribe(ctx, "  User@Example.COM ", nil, nil)

		require.NoError(t, err)
		assert.False(t, already)

		params := subscribers.Calls[1].Arguments.Get(1).(model.CreateSubscriberParams)
		assert.Equal(t, "user@example.com", params.Email)
		assert.Len(t, params.ConfirmationToken, 64)
		assert.Len(t, params.UnsubscribeToken, 64)
		assert.NotEqual(t, params.ConfirmationToken, params.UnsubscribeToken)

		mailer.waitForSend(t)
		assert.Equal(t, []string{"user@example.com"}, mailer.confirmations)
	})

	t.Run("duplicate email reports success without a new row", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)

		subscribers.On("FindByEmailHash", mock.Anything, mock.AnythingOfType("string")).
			Return(&model.Subscriber{ID: 1}, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: newFakeMailer()}
		already, err := svc.Subscribe(ctx, "user@example.com", nil, nil)

		require.NoError(t, err)
		assert.True(t, already)
		subscribers.AssertNotCalled(t, "Create")
	})

	t.Run("duplicate insert race reports success", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)

		subscribers.On("FindByEmailHash", mock.Anything, mock.AnythingOfType("string")).
			Return(nil, nil)
		subscribers.On("Create", mock.Anything, mock.AnythingOfType("model.CreateSubscriberParams")).
			Return(nil, &pq.Error{Code: "23505"})

		svc := &SubscriberService{subscribers: subscribers, mailer: newFakeMailer()}
		already, err := svc.Subscribe(ctx, "user@example.com", nil, nil)

		require.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		svc := &SubscriberService{}
		_, err := svc.Subscribe(ctx, "not-an-email", nil, nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms and sends survey invite", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		mailer := newFakeMailer()

		sub := &model.Subscriber{ID: 5, Email: "user@example.com", UnsubscribeToken: "unsub-token"}
		subscribers.On("FindByConfirmationToken", mock.Anything, "conf-token").Return(sub, nil)
		subscribers.On("MarkConfirmed", mock.Anything, int64(5)).Return(nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: mailer}
		result, err := svc.Confirm(ctx, "conf-token")

		require.NoError(t, err)
		assert.Equal(t, ConfirmSuccess, result)

		mailer.waitForSend(t)
		assert.Equal(t, []string{"user@example.com"}, mailer.surveys)
	})

	t.Run("already confirmed is idempotent", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		subscribers.On("FindByConfirmationToken", mock.Anything, "conf-token").
			Return(&model.Subscriber{ID: 5, Confirmed: true}, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: newFakeMailer()}
		result, err := svc.Confirm(ctx, "conf-token")

		require.NoError(t, err)
		assert.Equal(t, ConfirmAlreadyConfirmed, result)
		subscribers.AssertNotCalled(t, "MarkConfirmed")
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		subscribers.On("FindByConfirmationToken", mock.Anything, mock.AnythingOfType("string")).
			Return(nil, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: newFakeMailer()}
		result, err := svc.Confirm(ctx, "bogus")

		require.NoError(t, err)
		assert.Equal(t, ConfirmInvalid, result)
	})
}

func TestSubmitSurvey(t *testing.T) {
	ctx := context.Background()
	plannedUse := "research"

	t.Run("stores response and marks completed", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		surveys := new(mockSurveyRepo)

		sub := &model.Subscriber{ID: 9, Confirmed: true}
		subscribers.On("FindByUnsubscribeToken", mock.Anything, "tok").Return(sub, nil)
		subscribers.On("MarkSurveyCompleted", mock.Anything, int64(9)).Return(nil)
		surveys.On("Create", mock.Anything, mock.AnythingOfType("model.CreateSurveyParams")).
			Return(&model.Survey{ID: 1, SubscriberID: 9}, nil)

		svc := &SubscriberService{subscribers: subscribers, surveys: surveys}
		already, err := svc.SubmitSurvey(ctx, "tok", model.CreateSurveyParams{PlannedUse: &plannedUse})

		require.NoError(t, err)
		assert.False(t, already)

		params := surveys.Calls[0].Arguments.Get(1).(model.CreateSurveyParams)
		assert.Equal(t, int64(9), params.SubscriberID)
	})

	t.Run("repeat submission reports already completed", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		surveys := new(mockSurveyRepo)

		subscribers.On("FindByUnsubscribeToken", mock.Anything, "tok").
			Return(&model.Subscriber{ID: 9, Confirmed: true, SurveyCompleted: true}, nil)

		svc := &SubscriberService{subscribers: subscribers, surveys: surveys}
		already, err := svc.SubmitSurvey(ctx, "tok", model.CreateSurveyParams{})

		require.NoError(t, err)
		assert.True(t, already)
		surveys.AssertNotCalled(t, "Create")
	})

	t.Run("unconfirmed subscriber cannot submit", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		subscribers.On("FindByUnsubscribeToken", mock.Anything, "tok").
			Return(&model.Subscriber{ID: 9, Confirmed: false}, nil)

		svc := &SubscriberService{subscribers: subscribers}
		_, err := svc.SubmitSurvey(ctx, "tok", model.CreateSurveyParams{})

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})
}

func TestUnsubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by token", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		subscribers.On("DeleteByUnsubscribeToken", mock.Anything, "tok").Return(int64(1), nil)

		svc := &SubscriberService{subscribers: subscribers}
		removed, err := svc.Unsubscribe(ctx, "tok")

		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("unknown token removes nothing", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		subscribers.On("DeleteByUnsubscribeToken", mock.Anything, "tok").Return(int64(0), nil)

		svc := &SubscriberService{subscribers: subscribers}
		removed, err := svc.Unsubscribe(ctx, "tok")

		require.NoError(t, err)
		assert.False(t, removed)
	})
}

func TestSendAnnouncement(t *testing.T) {
	ctx := context.Background()
	announcement := mail.Announcement{Subject: "Update", Title: "News", Body: "Body"}

	confirmed := []model.Subscriber{
		{ID: 1, Email: "a@example.com", UnsubscribeToken: "ta", Confirmed: true},
		{ID: 2, Email: "b@example.com", UnsubscribeToken: "tb", Confirmed: true},
		{ID: 3, Email: "c@example.com", UnsubscribeToken: "tc", Confirmed: true},
	}

	t.Run("mails every confirmed subscriber", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		mailer := newFakeMailer()
		subscribers.On("FindConfirmed", mock.Anything).Return(confirmed, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: mailer}
		report, err := svc.SendAnnouncement(ctx, announcement, nil)

		require.NoError(t, err)
		assert.Equal(t, 3, report.Sent)
		assert.Equal(t, 0, report.Failed)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, mailer.announcements)
	})

	t.Run("filters to requested emails", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		mailer := newFakeMailer()
		subscribers.On("FindConfirmed", mock.Anything).Return(confirmed, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: mailer}
		report, err := svc.SendAnnouncement(ctx, announcement, []string{" B@Example.com "})

		require.NoError(t, err)
		assert.Equal(t, 1, report.Sent)
		assert.Equal(t, 1, report.Total)
		assert.Equal(t, 1, report.Requested)
		assert.Equal(t, []string{"b@example.com"}, mailer.announcements)
	})

	t.Run("one failure does not abort the run", func(t *testing.T) {
		subscribers := new(mockSubscriberRepo)
		mailer := newFakeMailer()
		mailer.failFor["b@example.com"] = true
		subscribers.On("FindConfirmed", mock.Anything).Return(confirmed, nil)

		svc := &SubscriberService{subscribers: subscribers, mailer: mailer}
		report, err := svc.SendAnnouncement(ctx, announcement, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Sent)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "b@example.com", report.Errors[0].Email)
	})

	t.Run("requires a subject", func(t *testing.T) {
		svc := &SubscriberService{}
		_, err := svc.SendAnnouncement(ctx, mail.Announcement{}, nil)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeMissingRequired, apperrors.GetCode(err))
	})
}
