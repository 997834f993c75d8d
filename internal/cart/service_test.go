package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LQT2201/Book-UIT/internal/session"
	apperrors "github.com/LQT2201/Book-UIT/pkg/errors"
)

type fakeBackend struct {
	mu           sync.Mutex
	server       []Line
	fetchErr     error
	replaceErr   error
	fetchCalls   int
	replaceCalls int
}

func (b *fakeBackend) FetchCart(ctx context.Context, sess *session.Session) ([]Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchCalls++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return clone(b.server), nil
}

func (b *fakeBackend) ReplaceCart(ctx context.Context, sess *session.Session, lines []Line) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaceCalls++
	if b.replaceErr != nil {
		return b.replaceErr
	}
	b.server = clone(lines)
	return nil
}

type memMirror struct {
	mu    sync.Mutex
	carts map[string][]Line
}

func newMemMirror() *memMirror {
	return &memMirror{carts: make(map[string][]Line)}
}

func (m *memMirror) Get(ctx context.Context, key string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines, ok := m.carts[key]
	if !ok {
		return nil, apperrors.NotFound("cart", key)
	}
	return clone(lines), nil
}

func (m *memMirror) Save(ctx context.Context, key string, lines []Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = clone(lines)
	return nil
}

func (m *memMirror) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events int
}

func (p *recordingPublisher) PublishCartUpdated(ctx context.Context, username string, lines []Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events++
	return nil
}

func newCartService(backend *fakeBackend) (*Service, *memMirror, *recordingPublisher) {
	mirror := newMemMirror()
	pub := &recordingPublisher{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewService(backend, mirror, pub, logger), mirror, pub
}

func sess() *session.Session {
	return &session.Session{Token: "tok", Username: "alice"}
}

func TestGet_FetchFailureYieldsEmptyCart(t *testing.T) {
	backend := &fakeBackend{fetchErr: errors.New("connection refused")}
	svc, _, _ := newCartService(backend)

	lines := svc.Get(context.Background(), sess())

	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestGet_MirrorHitSkipsBackend(t *testing.T) {
	backend := &fakeBackend{server: []Line{{ItemID: "b1", Quantity: 1}}}
	svc, mirror, _ := newCartService(backend)
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, "alice", []Line{{ItemID: "b1", Quantity: 3}}))

	lines := svc.Get(ctx, sess())
	assert.Equal(t, 3, lines[0].Quantity, "mirror state wins between mutations")
	assert.Equal(t, 0, backend.fetchCalls)
}

func TestAdd_ServerConfirmedCommit(t *testing.T) {
	backend := &fakeBackend{}
	svc, mirror, pub := newCartService(backend)
	ctx := context.Background()

	lines, err := svc.Add(ctx, sess(), Line{ItemID: "b1", Title: "Số Đỏ", Price: 50})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)

	committed, err := mirror.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, lines, committed)
	assert.Equal(t, lines, backend.server)
	assert.Equal(t, 1, pub.events)
}

func TestAdd_FailureKeepsPriorState(t *testing.T) {
	backend := &fakeBackend{}
	svc, mirror, pub := newCartService(backend)
	ctx := context.Background()

	_, err := svc.Add(ctx, sess(), Line{ItemID: "b1", Price: 50})
	require.NoError(t, err)

	backend.replaceErr = errors.New("boom")
	lines, err := svc.Add(ctx, sess(), Line{ItemID: "b2", Price: 10})

	require.Error(t, err)
	require.Len(t, lines, 1, "rejected mutation must return the prior committed state")
	assert.Equal(t, "b1", lines[0].ItemID)

	committed, err := mirror.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, committed, 1, "mirror must not contain the rejected staged state")
	assert.Equal(t, 1, pub.events, "no event for a rejected mutation")
}

func TestDecrementAtOne_NoBackendCall(t *testing.T) {
	backend := &fakeBackend{}
	svc, mirror, _ := newCartService(backend)
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, "alice", []Line{{ItemID: "b1", Quantity: 1}}))

	lines, err := svc.DecrementItem(ctx, sess(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, 0, backend.replaceCalls, "no-op mutations must not push a replace")
}

func TestSetItemQuantity_Clamps(t *testing.T) {
	backend := &fakeBackend{}
	svc, mirror, _ := newCartService(backend)
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, "alice", []Line{{ItemID: "b1", Quantity: 5}}))

	lines, err := svc.SetItemQuantity(ctx, sess(), "b1", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestConcurrentIncrements_NoLostUpdates(t *testing.T) {
	backend := &fakeBackend{}
	svc, mirror, _ := newCartService(backend)
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, "alice", []Line{
		{ItemID: "b1", Quantity: 1},
		{ItemID: "b2", Quantity: 1},
	}))
	backend.server = []Line{
		{ItemID: "b1", Quantity: 1},
		{ItemID: "b2", Quantity: 1},
	}

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.IncrementItem(ctx, sess(), "b1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	committed, err := mirror.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, committed, 2, "unrelated line must survive concurrent full replaces")
	assert.Equal(t, 1+n, committed[0].Quantity, "every increment must land")
	assert.Equal(t, 1, committed[1].Quantity)
}

func TestForget(t *testing.T) {
	backend := &fakeBackend{}
	svc, mirror, _ := newCartService(backend)
	ctx := context.Background()

	require.NoError(t, mirror.Save(ctx, "alice", []Line{{ItemID: "b1", Quantity: 1}}))
	svc.Forget(ctx, sess())

	_, err := mirror.Get(ctx, "alice")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
