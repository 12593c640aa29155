package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"scanview/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type StoreSuite struct {
	suite.Suite
	store *Store
}

func (s *StoreSuite) SetupTest() {
	file, err := NewFile(s.T().TempDir())
	require.NoError(s.T(), err)
	s.store = NewStore(file, testLogger())
}

func (s *StoreSuite) TestSetThenCurrentRoundTrips() {
	sess := Session{Token: "abc", Identity: &domain.Identity{Name: "A"}}
	require.NoError(s.T(), s.store.Set(sess))

	got := s.store.Current()
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "abc", got.Token)
	assert.Equal(s.T(), "A", got.Identity.Name)
}

func (s *StoreSuite) TestSetWithoutTokenRejected() {
	err := s.store.Set(Session{Identity: &domain.Identity{Name: "A"}})
	assert.ErrorIs(s.T(), err, ErrInvalidSession)
	assert.Nil(s.T(), s.store.Current())
}

func (s *StoreSuite) TestClearIsIdempotent() {
	require.NoError(s.T(), s.store.Set(Session{Token: "abc"}))

	require.NoError(s.T(), s.store.Clear())
	assert.Nil(s.T(), s.store.Current())

	require.NoError(s.T(), s.store.Clear())
	assert.Nil(s.T(), s.store.Current())
}

func (s *StoreSuite) TestCurrentReturnsCopy() {
	require.NoError(s.T(), s.store.Set(Session{Token: "abc", Identity: &domain.Identity{Name: "A"}}))

	got := s.store.Current()
	got.Identity.Name = "mutated"

	again := s.store.Current()
	assert.Equal(s.T(), "A", again.Identity.Name)
}

func (s *StoreSuite) TestListenersFireOnBoundaryOnly() {
	var calls []*Session
	unsubscribe := s.store.OnChange(func(sess *Session) {
		calls = append(calls, sess)
	})
	defer unsubscribe()

	// logged out -> logged in
	require.NoError(s.T(), s.store.Set(Session{Token: "abc", Identity: &domain.Identity{Name: "A"}}))
	require.Len(s.T(), calls, 1)
	assert.Equal(s.T(), "abc", calls[0].Token)

	// identity refresh keeps the boundary, so no notification
	require.NoError(s.T(), s.store.Set(Session{Token: "abc", Identity: &domain.Identity{Name: "Dr. A"}}))
	assert.Len(s.T(), calls, 1)

	// logged in -> logged out
	require.NoError(s.T(), s.store.Clear())
	require.Len(s.T(), calls, 2)
	assert.Nil(s.T(), calls[1])

	// already logged out, clearing again stays silent
	require.NoError(s.T(), s.store.Clear())
	assert.Len(s.T(), calls, 2)
}

func (s *StoreSuite) TestUnsubscribeStopsNotifications() {
	calls := 0
	unsubscribe := s.store.OnChange(func(*Session) { calls++ })
	unsubscribe()

	require.NoError(s.T(), s.store.Set(Session{Token: "abc"}))
	assert.Equal(s.T(), 0, calls)
}

func (s *StoreSuite) TestReconcileAdoptsExternalValue() {
	calls := 0
	s.store.OnChange(func(*Session) { calls++ })

	s.store.Reconcile(&Session{Token: "external"})
	require.NotNil(s.T(), s.store.Current())
	assert.Equal(s.T(), "external", s.store.Current().Token)
	assert.Equal(s.T(), 1, calls)

	// same value again is a no-op
	s.store.Reconcile(&Session{Token: "external"})
	assert.Equal(s.T(), 1, calls)

	// external logout
	s.store.Reconcile(nil)
	assert.Nil(s.T(), s.store.Current())
	assert.Equal(s.T(), 2, calls)
}

func (s *StoreSuite) TestReconcileDoesNotWriteDurableFile() {
	require.NoError(s.T(), s.store.Set(Session{Token: "abc"}))
	require.NoError(s.T(), s.store.file.Remove())

	s.store.Reconcile(&Session{Token: "other"})

	loaded, err := s.store.file.Load()
	require.NoError(s.T(), err)
	assert.Nil(s.T(), loaded)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func TestSessionSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	file, err := NewFile(dir)
	require.NoError(t, err)

	first := NewStore(file, testLogger())
	require.NoError(t, first.Set(Session{Token: "abc", Identity: &domain.Identity{Name: "A"}}))

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	second := NewStore(reopened, testLogger())

	got := second.Current()
	require.NotNil(t, got)
	assert.Equal(t, "abc", got.Token)
	assert.Equal(t, "A", got.Identity.Name)
}

func TestDistinctStateDirsShareNothing(t *testing.T) {
	fileA, err := NewFile(t.TempDir())
	require.NoError(t, err)
	fileB, err := NewFile(t.TempDir())
	require.NoError(t, err)

	storeA := NewStore(fileA, testLogger())
	require.NoError(t, storeA.Set(Session{Token: "abc"}))

	storeB := NewStore(fileB, testLogger())
	assert.Nil(t, storeB.Current())
}
