package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"roster-sync/core/ledger"
	"roster-sync/core/reconcile"
	"roster-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	NewHandler(svc, false).RegisterRoutes(app)
	return app
}

func TestHandleGetRoster(t *testing.T) {
	app := setupTestApp(t, defaultService(writeLedger(t, aliceLedger)))

	resp, err := app.Test(httptest.NewRequest("GET", "/roster", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body ledger.Set
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"username", "discord id", "ID Verified"}, body.Header)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "alice", body.Records[0].Get(ledger.ColumnUsername))
}

func TestHandleGetRoster_Missing(t *testing.T) {
	app := setupTestApp(t, defaultService(filepath.Join(t.TempDir(), "absent.csv")))

	resp, err := app.Test(httptest.NewRequest("GET", "/roster", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleGetMember(t *testing.T) {
	app := setupTestApp(t, defaultService(writeLedger(t, aliceLedger)))

	resp, err := app.Test(httptest.NewRequest("GET", "/roster/members/111", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alice", body["username"])

	resp, err = app.Test(httptest.NewRequest("GET", "/roster/members/999", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleSync(t *testing.T) {
	app := setupTestApp(t, defaultService(writeLedger(t, aliceLedger)))

	resp, err := app.Test(httptest.NewRequest("POST", "/roster/sync?dry_run=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body RunResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.DryRun)
	assert.False(t, body.Saved)
	assert.Equal(t, 1, body.Report.Summary.Repaired)
	assert.Equal(t, 1, body.Report.Summary.Created)

	resp, err = app.Test(httptest.NewRequest("POST", "/roster/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Saved)
}

func TestHandleSync_InvalidQuery(t *testing.T) {
	app := setupTestApp(t, defaultService(writeLedger(t, aliceLedger)))

	resp, err := app.Test(httptest.NewRequest("POST", "/roster/sync?dry_run=maybe", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleSync_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		source   reconcile.Source
		resolver reconcile.Resolver
		want     int
	}{
		{
			name:    "Source failure",
			content: aliceLedger,
			source: reconcile.SourceFunc(func(ctx context.Context) ([]reconcile.AuthoritativeRecord, error) {
				return nil, errors.New("connection refused")
			}),
			want: 502,
		},
		{
			name:    "Resolution failure",
			content: aliceLedger,
			resolver: reconcile.ResolverFunc(func(ctx context.Context, key string) (string, error) {
				return "", errors.New("directory unavailable")
			}),
			want: 502,
		},
		{
			name:    "Malformed ledger",
			content: "",
			want:    422,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := defaultService(writeLedger(t, tt.content))
			if tt.source != nil {
				svc.source = tt.source
			}
			if tt.resolver != nil {
				svc.resolver = tt.resolver
			}
			app := setupTestApp(t, svc)

			resp, err := app.Test(httptest.NewRequest("POST", "/roster/sync", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"In progress", ErrRunInProgress, fiber.StatusConflict},
		{"Missing ledger", fmt.Errorf("%w: x.csv", ErrLedgerMissing), fiber.StatusNotFound},
		{"Source", &reconcile.SourceError{Err: errors.New("down")}, fiber.StatusBadGateway},
		{"Resolution", &reconcile.ResolutionError{ExternalID: "1", Key: "k", Err: errors.New("404")}, fiber.StatusBadGateway},
		{"Format", &ledger.FormatError{Path: "x.csv", Err: ledger.ErrNoHeader}, fiber.StatusUnprocessableEntity},
		{"IO", &ledger.IOError{Path: "x.csv", Op: "rename", Err: errors.New("denied")}, fiber.StatusInternalServerError},
		{"No backups", ErrNoBackups, fiber.StatusNotFound},
		{"No storage", ErrBackupUnavailable, fiber.StatusServiceUnavailable},
		{"Unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestHandleListBackups(t *testing.T) {
	t.Run("Storage configured", func(t *testing.T) {
		client := new(mocks.Client)
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Key: "ledger-backups/triskel.20261018T120000Z.csv"}
		close(ch)
		client.On("ListObjects", mock.Anything, "roster", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		svc := defaultService(writeLedger(t, aliceLedger))
		svc.client = client
		svc.bucket = "roster"

		resp, err := setupTestApp(t, svc).Test(httptest.NewRequest("GET", "/roster/backups", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body struct {
			Backups []string `json:"backups"`
			Count   int      `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 1, body.Count)
		assert.Equal(t, []string{"ledger-backups/triskel.20261018T120000Z.csv"}, body.Backups)
	})

	t.Run("No storage", func(t *testing.T) {
		resp, err := setupTestApp(t, defaultService(writeLedger(t, aliceLedger))).Test(httptest.NewRequest("GET", "/roster/backups", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})
}
