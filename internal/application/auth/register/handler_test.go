package register_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskflow-auth/internal/application/auth"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/authtest"
	"github.com/oksasatya/taskflow-auth/internal/application/auth/register"
	"github.com/oksasatya/taskflow-auth/internal/application/mediator"
	"github.com/oksasatya/taskflow-auth/internal/domain/entity"
	"github.com/oksasatya/taskflow-auth/internal/domain/repository"
	"github.com/oksasatya/taskflow-auth/internal/domain/result"
	"github.com/oksasatya/taskflow-auth/internal/infrastructure/memory"
	"github.com/oksasatya/taskflow-auth/pkg/validation"
)

// spyStore records calls made through the units of work it opens.
type spyStore struct {
	repository.UserStore

	mu          sync.Mutex
	existsCalls []string
	adds        int
	saveErr     error
	beforeSave  func()
}

func (s *spyStore) Begin() repository.UserRepository {
	return &spyRepo{UserRepository: s.UserStore.Begin(), spy: s}
}

type spyRepo struct {
	repository.UserRepository
	spy *spyStore
}

func (r *spyRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.spy.mu.Lock()
	r.spy.existsCalls = append(r.spy.existsCalls, email)
	r.spy.mu.Unlock()
	return r.UserRepository.ExistsByEmail(ctx, email)
}

func (r *spyRepo) Add(u *entity.User) {
	r.spy.mu.Lock()
	r.spy.adds++
	r.spy.mu.Unlock()
	r.UserRepository.Add(u)
}

func (r *spyRepo) SaveChanges(ctx context.Context) (int, error) {
	if r.spy.beforeSave != nil {
		r.spy.beforeSave()
	}
	if r.spy.saveErr != nil {
		return 0, r.spy.saveErr
	}
	return r.UserRepository.SaveChanges(ctx)
}

type fixture struct {
	mem       *memory.UserStore
	spy       *spyStore
	publisher *authtest.Publisher
	hook      *test.Hook
	handler   *register.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.NewUserStore()
	spy := &spyStore{UserStore: mem}
	pub := &authtest.Publisher{}
	logger, hook := test.NewNullLogger()
	return &fixture{
		mem:       mem,
		spy:       spy,
		publisher: pub,
		hook:      hook,
		handler:   register.NewHandler(spy, authtest.Hasher{}, pub, logger),
	}
}

func (f *fixture) seed(t *testing.T, email string) {
	t.Helper()
	repo := f.mem.Begin()
	repo.Add(entity.CreateUser(email, "hashed:whatever", "Existing"))
	_, err := repo.SaveChanges(context.Background())
	require.NoError(t, err)
}

func Test_Handle_EmptyStore_RegistersUser(t *testing.T) {
	// arrange
	f := newFixture(t)

	// act
	res, err := f.handler.Handle(context.Background(), register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	// assert
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "got %v", res)
	got := res.Value()
	assert.NotEmpty(t, got.UserID)
	assert.Equal(t, "bob@test.com", got.Email)
	assert.Equal(t, "Bob", got.DisplayName)

	stored, err := f.mem.Begin().GetByID(context.Background(), got.UserID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:secret123", stored.PasswordHash(), "only the hash is stored")
	assert.False(t, stored.IsEmailVerified())

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, got.UserID.String(), events[0].UserID)
}

func Test_Handle_ResponseCarriesNormalizedEmail(t *testing.T) {
	f := newFixture(t)

	res, err := f.handler.Handle(context.Background(), register.Command{
		Email: "  Carol@Example.COM ", Password: "secret123", DisplayName: " Carol D. ",
	})

	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", res.Value().Email)
	assert.Equal(t, "Carol D.", res.Value().DisplayName)
}

func Test_Handle_ExistingEmail_FailsWithoutAdding(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "bob@test.com")

	res, err := f.handler.Handle(context.Background(), register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	require.NoError(t, err)
	assert.Equal(t, auth.EmailAlreadyInUse, res.Err())
	assert.Zero(t, f.spy.adds)
	assert.Empty(t, f.publisher.Events())
}

func Test_Handle_EmailDifferingByCaseAndWhitespace_IsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice@example.com")

	res, err := f.handler.Handle(context.Background(), register.Command{
		Email: "  Alice@Example.com ", Password: "secret123", DisplayName: "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, "auth.email_already_in_use", res.Err().Code)
	assert.Equal(t, []string{"alice@example.com"}, f.spy.existsCalls)
}

func Test_Handle_ConcurrentDuplicates_ExactlyOneSucceeds(t *testing.T) {
	// Both handlers pass the existence check before either commits.
	f := newFixture(t)
	var arrived sync.WaitGroup
	arrived.Add(2)
	f.spy.beforeSave = func() {
		arrived.Done()
		arrived.Wait()
	}

	var wg sync.WaitGroup
	results := make([]result.Result[register.Response], 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.handler.Handle(context.Background(), register.Command{
				Email: "race@test.com", Password: "secret123", DisplayName: "Racer",
			})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, r := range results {
		switch {
		case r.IsSuccess():
			ok++
		case r.Err() == auth.EmailAlreadyInUse:
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
	assert.Equal(t, 2, f.spy.adds)
	assert.Equal(t, 1, f.mem.Len())
}

func Test_Handle_HasherFailure_ReturnsInternalError(t *testing.T) {
	f := newFixture(t)
	logger, hook := test.NewNullLogger()
	h := register.NewHandler(f.spy, authtest.Hasher{Err: errors.New("bcrypt exploded")}, nil, logger)

	res, err := h.Handle(context.Background(), register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	require.NoError(t, err)
	assert.Equal(t, result.InternalError, res.Err())
	assert.NotContains(t, res.Err().Message, "bcrypt")
	assert.Zero(t, f.mem.Len())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func Test_Handle_SaveFailure_ReturnsInternalError(t *testing.T) {
	f := newFixture(t)
	f.spy.saveErr = errors.New("connection reset by peer")

	res, err := f.handler.Handle(context.Background(), register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	require.NoError(t, err)
	assert.Equal(t, result.InternalError, res.Err())
	assert.Empty(t, f.publisher.Events())
	assert.Len(t, f.hook.AllEntries(), 1)
}

func Test_Handle_CancelledContext_PropagatesAndPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.handler.Handle(ctx, register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.mem.Len())
	assert.Empty(t, f.hook.AllEntries(), "cancellation is not an error worth logging")
}

func Test_Handle_PublishFailure_StillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = errors.New("broker down")

	res, err := f.handler.Handle(context.Background(), register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, 1, f.mem.Len())
	require.NotNil(t, f.hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)
}

func Test_Dispatch_InvalidCommand_NeverReachesHandler(t *testing.T) {
	var calls atomic.Int32
	probe := mediator.HandlerFunc[register.Command, register.Response](
		func(context.Context, register.Command) (result.Result[register.Response], error) {
			calls.Add(1)
			return result.Success(register.Response{}), nil
		})
	reg := mediator.NewRegistry()
	require.NoError(t, mediator.Register[register.Command, register.Response](reg, register.NewValidator(validation.New()), probe))
	d := mediator.New(reg, nil)

	invalid := []register.Command{
		{Email: "al@x.com", Password: "short", DisplayName: "Al"},
		{Email: "al@x.com", Password: "secret123", DisplayName: "A"},
		{Email: longEmail(), Password: "secret123", DisplayName: "Al"},
	}
	for _, cmd := range invalid {
		res, err := mediator.Send[register.Command, register.Response](context.Background(), d, cmd)
		require.NoError(t, err)
		assert.True(t, res.IsFailure())
	}

	assert.Zero(t, calls.Load())
}

func Test_Dispatch_ValidCommand_RegistersThroughPipeline(t *testing.T) {
	f := newFixture(t)
	reg := mediator.NewRegistry()
	require.NoError(t, mediator.Register[register.Command, register.Response](reg, register.NewValidator(validation.New()), f.handler))
	d := mediator.New(reg, nil)

	res, err := mediator.Send[register.Command, register.Response](context.Background(), d, register.Command{
		Email: "bob@test.com", Password: "secret123", DisplayName: "Bob",
	})

	require.NoError(t, err)
	assert.Equal(t, "bob@test.com", res.Value().Email)
}

func longEmail() string {
	return strings.Repeat("a", 256) + "@x.com"
}
