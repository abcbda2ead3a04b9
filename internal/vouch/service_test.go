package vouch

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbasiconnect/api/internal/logging"
	"github.com/abbasiconnect/api/internal/user"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*user.User)}
}

func (s *fakeUserStore) add(status user.Status) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &user.User{ID: id, Name: "Member " + id.String()[:8], Status: status}
	return id
}

func (s *fakeUserStore) Create(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user.User{ID: uuid.New(), Email: email, Status: user.StatusCreated}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, profile user.Profile, status user.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Name = profile.Name
	u.City = profile.City
	u.Pincode = profile.Pincode
	u.Status = status
	return nil
}

func (s *fakeUserStore) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to user.Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Status != from {
		return false, nil
	}
	u.Status = to
	return true, nil
}

func (s *fakeUserStore) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

type fakeVouchStore struct {
	mu      sync.Mutex
	vouches []Vouch
	users   *fakeUserStore
	nextID  int64
}

func (s *fakeVouchStore) Insert(_ context.Context, v *Vouch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vouches {
		if existing.VoucherID == v.VoucherID && existing.CandidateID == v.CandidateID {
			return ErrDuplicateVouch
		}
	}
	s.nextID++
	v.ID = s.nextID
	s.vouches = append(s.vouches, *v)
	return nil
}

func (s *fakeVouchStore) Exists(_ context.Context, voucherID, candidateID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vouches {
		if v.VoucherID == voucherID && v.CandidateID == candidateID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeVouchStore) ListQualifying(_ context.Context, candidateID uuid.UUID) ([]VoucherInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var infos []VoucherInfo
	for _, v := range s.vouches {
		if v.CandidateID != candidateID || !IsQualifying(v.Decision) {
			continue
		}
		info := VoucherInfo{ID: v.VoucherID, Decision: v.Decision, CreatedAt: v.CreatedAt}
		if u, ok := s.users.users[v.VoucherID]; ok {
			info.Name = u.Name
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func newVouchFixture(t *testing.T) (*Service, *fakeUserStore, *fakeVouchStore) {
	t.Helper()
	users := newFakeUserStore()
	vouches := &fakeVouchStore{users: users}
	service := NewService(vouches, users, logging.NewLogger(true))
	return service, users, vouches
}

func TestSubmitValidation(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	voucher := users.add(user.StatusVerified)
	candidate := users.add(user.StatusAwaitingVouches)

	_, err := service.Submit(ctx, voucher, candidate, "best_friend")
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = service.Submit(ctx, voucher, voucher, DecisionKnowPersonally)
	assert.ErrorIs(t, err, ErrSelfVouch)

	_, err = service.Submit(ctx, voucher, uuid.New(), DecisionKnowPersonally)
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	unverified := users.add(user.StatusAwaitingVouches)
	_, err = service.Submit(ctx, unverified, candidate, DecisionKnowPersonally)
	assert.ErrorIs(t, err, ErrVoucherNotVerified)
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	voucher := users.add(user.StatusVerified)
	candidate := users.add(user.StatusAwaitingVouches)

	_, err := service.Submit(ctx, voucher, candidate, DecisionKnowPersonally)
	require.NoError(t, err)

	_, err = service.Submit(ctx, voucher, candidate, DecisionFamilyConnection)
	assert.ErrorIs(t, err, ErrDuplicateVouch)
}

func TestStatusPromotesAtQuorum(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	candidate := users.add(user.StatusAwaitingVouches)

	for i := 0; i < RequiredVouches; i++ {
		voucher := users.add(user.StatusVerified)
		_, err := service.Submit(ctx, voucher, candidate, DecisionKnowPersonally)
		require.NoError(t, err)

		result, err := service.Status(ctx, candidate)
		require.NoError(t, err)
		assert.Equal(t, i+1, result.TotalVouches)
		assert.Equal(t, RequiredVouches, result.RequiredVouches)

		if i+1 < RequiredVouches {
			assert.Equal(t, user.StatusAwaitingVouches, result.Status)
		} else {
			assert.Equal(t, user.StatusVerified, result.Status)
		}
	}

	// The promotion survives further status reads.
	result, err := service.Status(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, user.StatusVerified, result.Status)
}

func TestStatusIgnoresNonQualifyingDecisions(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	candidate := users.add(user.StatusAwaitingVouches)

	for _, decision := range []string{
		DecisionKnowPersonally,
		DecisionFamilyConnection,
		DecisionDontKnow,
		DecisionDeclined,
	} {
		voucher := users.add(user.StatusVerified)
		_, err := service.Submit(ctx, voucher, candidate, decision)
		require.NoError(t, err)
	}

	// Four vouches exist but only two qualify, so no promotion.
	result, err := service.Status(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalVouches)
	assert.Equal(t, user.StatusAwaitingVouches, result.Status)
}

func TestStatusDoesNotPromoteOtherStates(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	// A restricted candidate stays restricted no matter how many vouches.
	candidate := users.add(user.StatusRestricted)
	for i := 0; i < RequiredVouches; i++ {
		voucher := users.add(user.StatusVerified)
		_, err := service.Submit(ctx, voucher, candidate, DecisionKnowPersonally)
		require.NoError(t, err)
	}

	result, err := service.Status(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, user.StatusRestricted, result.Status)
}

func TestStatusConcurrentPromotion(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	candidate := users.add(user.StatusAwaitingVouches)
	for i := 0; i < RequiredVouches; i++ {
		voucher := users.add(user.StatusVerified)
		_, err := service.Submit(ctx, voucher, candidate, DecisionCommunityAcquaintance)
		require.NoError(t, err)
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]*StatusResult, readers)
	errs := make([]error, readers)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.Status(ctx, candidate)
		}(i)
	}
	wg.Wait()

	// Every concurrent reader converges on verified.
	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, user.StatusVerified, results[i].Status)
	}

	u, err := users.GetByID(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, user.StatusVerified, u.Status)
}

func TestStatusListsVouchers(t *testing.T) {
	service, users, _ := newVouchFixture(t)
	ctx := context.Background()

	candidate := users.add(user.StatusAwaitingVouches)
	voucher := users.add(user.StatusVerified)
	_, err := service.Submit(ctx, voucher, candidate, DecisionFamilyConnection)
	require.NoError(t, err)

	result, err := service.Status(ctx, candidate)
	require.NoError(t, err)
	require.Len(t, result.Vouchers, 1)
	assert.Equal(t, voucher, result.Vouchers[0].ID)
	assert.Equal(t, DecisionFamilyConnection, result.Vouchers[0].Decision)
	assert.NotEmpty(t, result.Vouchers[0].Name)
}
