package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA = "0b5c9a0e-3c71-4d1d-9d0c-8f1a3a0e6f11"
	idB = "7e0f4f5b-2a58-4a8f-b0a4-52c1f4a9d3c2"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "slink.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestInsertAndGetFile(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", Digest: "abc", DateAdded: epoch}))

	f, err := l.GetFile(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", f.Filename)
	assert.Equal(t, "abc", f.Digest)
	assert.True(t, f.DateAdded.Equal(epoch))
}

func TestGetFileMissing(t *testing.T) {
	l := openTestLedger(t)

	_, err := l.GetFile(context.Background(), idA)
	assert.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestInsertFileDuplicate(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))
	err := l.InsertFile(ctx, File{Identifier: idA, Filename: "b.txt", DateAdded: epoch})
	assert.ErrorIs(t, err, serrors.ErrDuplicateIdentifier)
}

func TestFindByNameOrdersByDateAdded(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	require.NoError(t, l.InsertFile(ctx, File{Identifier: idB, Filename: "a.txt", DateAdded: epoch.Add(time.Hour)}))
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))
	require.NoError(t, l.InsertFile(ctx, File{Identifier: "other", Filename: "b.txt", DateAdded: epoch}))

	files, err := l.FindByName(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, idA, files[0].Identifier)
	assert.Equal(t, idB, files[1].Identifier)

	none, err := l.FindByName(ctx, "missing.txt")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestShareLifecycle(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))

	require.NoError(t, l.UpsertShare(ctx, idA, "bob", "tokentoken", epoch.Add(time.Minute)))

	shares, err := l.Shares(ctx, idA)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Active)
	assert.Nil(t, shares[0].DateRemoved)
	assert.Equal(t, "tokentoken", shares[0].LinkToken)

	removed, err := l.DeactivateShare(ctx, idA, "bob", epoch.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, removed)

	shares, err = l.Shares(ctx, idA)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.False(t, shares[0].Active)
	require.NotNil(t, shares[0].DateRemoved)
	assert.True(t, shares[0].DateRemoved.Equal(epoch.Add(2*time.Minute)))

	// A second unshare finds nothing active.
	removed, err = l.DeactivateShare(ctx, idA, "bob", epoch.Add(3*time.Minute))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUpsertShareReactivates(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	require.NoError(t, l.UpsertShare(ctx, idA, "bob", "first", epoch))
	_, err := l.DeactivateShare(ctx, idA, "bob", epoch.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, l.UpsertShare(ctx, idA, "bob", "second", epoch.Add(2*time.Minute)))

	shares, err := l.Shares(ctx, idA)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Active)
	assert.Nil(t, shares[0].DateRemoved)
	assert.Equal(t, "second", shares[0].LinkToken)
}

func TestDeactivateSharesAndHistory(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))
	require.NoError(t, l.UpsertShare(ctx, idA, "bob", "t1", epoch))
	require.NoError(t, l.UpsertShare(ctx, idA, "carol", "t2", epoch))
	_, err := l.DeactivateShare(ctx, idA, "carol", epoch)
	require.NoError(t, err)

	n, err := l.DeactivateShares(ctx, idA, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, l.DeleteFile(ctx, idA))
	_, err = l.GetFile(ctx, idA)
	assert.ErrorIs(t, err, serrors.ErrNotFound)

	shares, err := l.Shares(ctx, idA)
	require.NoError(t, err)
	assert.Len(t, shares, 2)
	for _, s := range shares {
		assert.False(t, s.Active)
	}
}

func TestListFilesCountsActiveShares(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idB, Filename: "b.txt", DateAdded: epoch.Add(time.Hour)}))
	require.NoError(t, l.UpsertShare(ctx, idA, "bob", "t1", epoch))
	require.NoError(t, l.UpsertShare(ctx, idA, "carol", "t2", epoch))
	_, err := l.DeactivateShare(ctx, idA, "carol", epoch)
	require.NoError(t, err)

	files, err := l.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, idB, files[0].Identifier)
	assert.Equal(t, 0, files[0].ActiveShares)
	assert.Equal(t, idA, files[1].Identifier)
	assert.Equal(t, 1, files[1].ActiveShares)
}

func TestActiveTokensAndStats(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Files)
	assert.Nil(t, stats.Oldest)

	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idB, Filename: "b.txt", DateAdded: epoch.Add(time.Hour)}))
	require.NoError(t, l.UpsertShare(ctx, idA, "bob", "t1", epoch))
	require.NoError(t, l.UpsertShare(ctx, idB, "bob", "t2", epoch))
	_, err = l.DeactivateShare(ctx, idB, "bob", epoch)
	require.NoError(t, err)

	tokens, err := l.ActiveTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"t1": idA}, tokens)

	stats, err = l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Shares)
	assert.Equal(t, 1, stats.ActiveShares)
	require.NotNil(t, stats.Oldest)
	assert.True(t, stats.Oldest.Equal(epoch))
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, serrors.ErrConfiguration)
}

func TestOpenPathWithURIDelimiters(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "odd?dir#x", "50% shares.db")

	l, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch}))
	require.NoError(t, l.Close())

	assert.FileExists(t, path)

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	f, err := reopened.GetFile(ctx, idA)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", f.Filename)
}

func TestDSNEscapesPath(t *testing.T) {
	got := dsn("/var/lib/slink?x#y/a%b.db")
	assert.True(t, strings.HasPrefix(got, "file:/var/lib/slink%3Fx%23y/a%25b.db?"), got)
	assert.Contains(t, got, "_pragma=journal_mode%28WAL%29")
}

func TestQueryFailuresWrapLedgerError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := New(db)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO files").WillReturnError(boom)
	err = l.InsertFile(ctx, File{Identifier: idA, Filename: "a.txt", DateAdded: epoch})
	assert.ErrorIs(t, err, serrors.ErrLedger)
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("SELECT identifier, filename").WillReturnError(boom)
	_, err = l.GetFile(ctx, idA)
	assert.ErrorIs(t, err, serrors.ErrLedger)
	assert.NotErrorIs(t, err, serrors.ErrNotFound)

	mock.ExpectExec("UPDATE shares").WillReturnError(boom)
	_, err = l.DeactivateShare(ctx, idA, "bob", epoch)
	assert.ErrorIs(t, err, serrors.ErrLedger)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSharesScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	removed := "2024-03-01T13:00:00.000000000Z"
	mock.ExpectQuery("FROM shares WHERE identifier").
		WithArgs(idA).
		WillReturnRows(sqlmock.NewRows([]string{"identifier", "recipient", "link_token", "date_shared", "date_removed", "active"}).
			AddRow(idA, "bob", "t1", "2024-03-01T12:00:00.000000000Z", nil, true).
			AddRow(idA, "carol", "t2", "2024-03-01T12:30:00.000000000Z", removed, false))

	shares, err := New(db).Shares(context.Background(), idA)
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Nil(t, shares[0].DateRemoved)
	require.NotNil(t, shares[1].DateRemoved)
	assert.Equal(t, 13, shares[1].DateRemoved.Hour())
	require.NoError(t, mock.ExpectationsWereMet())
}
