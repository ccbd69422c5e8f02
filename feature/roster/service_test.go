package roster

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"roster-sync/core/ledger"
	"roster-sync/core/reconcile"
	"roster-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const aliceLedger = "username,discord id,ID Verified\nalice,111,true\n"

func writeLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triskel.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func staticSource(records ...reconcile.AuthoritativeRecord) reconcile.Source {
	return reconcile.SourceFunc(func(ctx context.Context) ([]reconcile.AuthoritativeRecord, error) {
		return records, nil
	})
}

func mapResolver(names map[string]string) reconcile.Resolver {
	return reconcile.ResolverFunc(func(ctx context.Context, key string) (string, error) {
		name, ok := names[key]
		if !ok {
			return "", errors.New("unknown key " + key)
		}
		return name, nil
	})
}

func ledgerConfig(path string) ledger.Config {
	return ledger.Config{
		Path:          path,
		DefaultHeader: "username,discord id,ID Verified",
		TrueValue:     "true",
		FalseValue:    "false",
		BackupPrefix:  "ledger-backups",
		BackupKeep:    2,
	}
}

func defaultService(path string) *Service {
	return NewService(
		staticSource(
			reconcile.AuthoritativeRecord{ExternalID: "222", ResolutionKey: "usr_alice"},
			reconcile.AuthoritativeRecord{ExternalID: "333", ResolutionKey: "usr_bob"},
		),
		mapResolver(map[string]string{"usr_alice": "alice", "usr_bob": "bob"}),
		nil, "", ledgerConfig(path), zap.NewNop(),
	)
}

func TestService_Run(t *testing.T) {
	path := writeLedger(t, aliceLedger)
	svc := defaultService(path)

	result, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Report.Summary.Repaired)
	assert.Equal(t, 1, result.Report.Summary.Created)

	set, err := ledger.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "222", set.Records[0].Get(ledger.ColumnExternalID))
	assert.Equal(t, "bob", set.Records[1].Get(ledger.ColumnUsername))
	assert.Equal(t, "333", set.Records[1].Get(ledger.ColumnExternalID))
	assert.Equal(t, "true", set.Records[1].Get(ledger.ColumnVerified))

	again, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.False(t, again.Report.Changed())
	assert.Equal(t, 2, again.Report.Summary.Matched)
}

func TestService_RunDryRun(t *testing.T) {
	path := writeLedger(t, aliceLedger)
	client := new(mocks.Client)
	svc := defaultService(path)
	svc.client = client

	result, err := svc.Run(context.Background(), RunOptions{DryRun: true, Backup: true})
	require.NoError(t, err)
	assert.False(t, result.Saved)
	assert.True(t, result.Report.Changed())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, aliceLedger, string(data))
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RunMissingLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triskel.csv")

	t.Run("Fatal by default", func(t *testing.T) {
		_, err := defaultService(path).Run(context.Background(), RunOptions{})
		assert.ErrorIs(t, err, ErrLedgerMissing)
		assert.NoFileExists(t, path)
	})

	t.Run("Seeded when allowed", func(t *testing.T) {
		svc := defaultService(path)
		svc.cfg.AllowMissing = true

		result, err := svc.Run(context.Background(), RunOptions{})
		require.NoError(t, err)
		assert.True(t, result.Seeded)
		assert.Equal(t, 2, result.Report.Summary.Created)

		set, err := ledger.Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"username", "discord id", "ID Verified"}, set.Header)
		assert.Equal(t, 2, set.Len())
	})
}

func TestService_RunFailuresLeaveLedgerUntouched(t *testing.T) {
	tests := []struct {
		name   string
		source reconcile.Source
		check  func(t *testing.T, err error)
	}{
		{
			name: "Source failure",
			source: reconcile.SourceFunc(func(ctx context.Context) ([]reconcile.AuthoritativeRecord, error) {
				return nil, errors.New("connection refused")
			}),
			check: func(t *testing.T, err error) {
				var srcErr *reconcile.SourceError
				assert.ErrorAs(t, err, &srcErr)
			},
		},
		{
			name:   "Resolution failure",
			source: staticSource(reconcile.AuthoritativeRecord{ExternalID: "444", ResolutionKey: "usr_ghost"}),
			check: func(t *testing.T, err error) {
				var resErr *reconcile.ResolutionError
				require.ErrorAs(t, err, &resErr)
				assert.Equal(t, "444", resErr.ExternalID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLedger(t, aliceLedger)
			svc := defaultService(path)
			svc.source = tt.source

			_, err := svc.Run(context.Background(), RunOptions{})
			tt.check(t, err)

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, aliceLedger, string(data))
		})
	}
}

func TestService_RunMalformedLedger(t *testing.T) {
	path := writeLedger(t, "")
	_, err := defaultService(path).Run(context.Background(), RunOptions{})
	var fmtErr *ledger.FormatError
	assert.ErrorAs(t, err, &fmtErr)
}

func TestService_RunInProgress(t *testing.T) {
	path := writeLedger(t, aliceLedger)
	entered := make(chan struct{})
	release := make(chan struct{})

	svc := defaultService(path)
	svc.source = reconcile.SourceFunc(func(ctx context.Context) ([]reconcile.AuthoritativeRecord, error) {
		close(entered)
		<-release
		return nil, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), RunOptions{})
		done <- err
	}()

	<-entered
	_, err := svc.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	assert.NoError(t, <-done)
}

func TestService_RunBackup(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	t.Run("Uploads and prunes before saving", func(t *testing.T) {
		path := writeLedger(t, aliceLedger)
		client := new(mocks.Client)
		svc := defaultService(path)
		svc.client = client
		svc.bucket = "roster"
		svc.now = func() time.Time { return now }

		client.On("PutObject", mock.Anything, "roster", "ledger-backups/triskel.20261018T120000Z.csv", mock.Anything, int64(len(aliceLedger)), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		ch := make(chan minio.ObjectInfo, 3)
		ch <- minio.ObjectInfo{Key: "ledger-backups/triskel.20261016T120000Z.csv"}
		ch <- minio.ObjectInfo{Key: "ledger-backups/triskel.20261017T120000Z.csv"}
		ch <- minio.ObjectInfo{Key: "ledger-backups/triskel.20261018T120000Z.csv"}
		close(ch)
		client.On("ListObjects", mock.Anything, "roster", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))
		client.On("RemoveObject", mock.Anything, "roster", "ledger-backups/triskel.20261016T120000Z.csv", mock.Anything).Return(nil)

		result, err := svc.Run(context.Background(), RunOptions{Backup: true})
		require.NoError(t, err)
		assert.Equal(t, "ledger-backups/triskel.20261018T120000Z.csv", result.BackupObject)
		assert.Equal(t, []string{"ledger-backups/triskel.20261016T120000Z.csv"}, result.Pruned)
		assert.True(t, result.Saved)
		client.AssertExpectations(t)
	})

	t.Run("Upload failure aborts the save", func(t *testing.T) {
		path := writeLedger(t, aliceLedger)
		client := new(mocks.Client)
		svc := defaultService(path)
		svc.client = client

		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("access denied"))

		_, err := svc.Run(context.Background(), RunOptions{Backup: true})
		require.Error(t, err)

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, aliceLedger, string(data))
	})

	t.Run("No storage configured", func(t *testing.T) {
		path := writeLedger(t, aliceLedger)
		_, err := defaultService(path).Run(context.Background(), RunOptions{Backup: true})
		assert.ErrorIs(t, err, ErrBackupUnavailable)
	})

	t.Run("Unchanged ledger skips backup", func(t *testing.T) {
		path := writeLedger(t, aliceLedger)
		client := new(mocks.Client)
		svc := defaultService(path)
		svc.client = client
		svc.source = staticSource(reconcile.AuthoritativeRecord{ExternalID: "111", ResolutionKey: "usr_alice"})

		result, err := svc.Run(context.Background(), RunOptions{Backup: true})
		require.NoError(t, err)
		assert.Empty(t, result.BackupObject)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Member(t *testing.T) {
	path := writeLedger(t, aliceLedger)
	svc := defaultService(path)

	record, found, err := svc.Member("111")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", record.Get(ledger.ColumnUsername))
	assert.True(t, record.Flag(ledger.ColumnVerified))

	_, found, err = svc.Member("999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestService_Restore(t *testing.T) {
	listing := func() <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "ledger-backups/triskel.20261017T120000Z.csv"}
		ch <- minio.ObjectInfo{Key: "ledger-backups/triskel.20261018T120000Z.csv"}
		close(ch)
		return ch
	}

	t.Run("Newest by default", func(t *testing.T) {
		path := writeLedger(t, "username,discord id,ID Verified\nmallory,999,false\n")
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, "roster", mock.Anything).Return(listing())
		client.On("GetObject", mock.Anything, "roster", "ledger-backups/triskel.20261018T120000Z.csv", mock.Anything).
			Return(io.NopCloser(strings.NewReader(aliceLedger)), nil)

		svc := defaultService(path)
		svc.client = client
		svc.bucket = "roster"

		object, set, err := svc.Restore(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "ledger-backups/triskel.20261018T120000Z.csv", object)
		assert.Equal(t, 1, set.Len())

		record, found, err := svc.Member("111")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "alice", record.Get(ledger.ColumnUsername))
	})

	t.Run("No backups", func(t *testing.T) {
		ch := make(chan minio.ObjectInfo)
		close(ch)
		client := new(mocks.Client)
		client.On("ListObjects", mock.Anything, mock.Anything, mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		svc := defaultService(writeLedger(t, aliceLedger))
		svc.client = client

		_, _, err := svc.Restore(context.Background(), "")
		assert.ErrorIs(t, err, ErrNoBackups)
	})

	t.Run("No storage", func(t *testing.T) {
		_, _, err := defaultService(writeLedger(t, aliceLedger)).Restore(context.Background(), "x")
		assert.ErrorIs(t, err, ErrBackupUnavailable)
	})
}
