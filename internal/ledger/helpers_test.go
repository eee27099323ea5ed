package ledger

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sheikh-saqib/atm-ledger-system/internal/auth"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage"
	"github.com/sheikh-saqib/atm-ledger-system/internal/storage/memory"
)

// fakeClock is a settable clock shared by the engine and the seed.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(year int, month time.Month, day int) *fakeClock {
	return &fakeClock{now: time.Date(year, month, day, 10, 30, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(year int, month time.Month, day int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(year, month, day, 10, 30, 0, 0, time.Local)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	keys   []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return p.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testHasher() *auth.PINHasher {
	return auth.NewPINHasher(bcrypt.MinCost)
}

// newTestEngine opens an engine over a fresh memory store holding the
// default seed (1001 savings 15000, 1002 current 8000).
func newTestEngine(t *testing.T, clock *fakeClock, opts ...Option) (*Engine, *memory.MemoryLedgerStore) {
	t.Helper()
	store := memory.NewMemoryLedgerStore(storage.DefaultSeed(clock.Now, testHasher()))
	return openOn(t, store, clock, opts...), store
}

func openOn(t *testing.T, store *memory.MemoryLedgerStore, clock *fakeClock, opts ...Option) *Engine {
	t.Helper()
	base := []Option{WithClock(clock.Now), WithPINHasher(testHasher()), WithLogger(quietLogger())}
	e, err := Open(context.Background(), store, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balanceOf(t *testing.T, e *Engine, id string) string {
	t.Helper()
	b, err := e.Balance(id)
	require.NoError(t, err)
	return b.StringFixed(2)
}

func historyLen(t *testing.T, e *Engine, id string) int {
	t.Helper()
	a, err := e.Account(id)
	require.NoError(t, err)
	return len(a.Transactions)
}
