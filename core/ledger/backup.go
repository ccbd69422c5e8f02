package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"roster-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

const backupTimeLayout = "20060102T150405Z"

// BackupObjectName returns the object key a backup of path taken at now is stored under.
// Keys of the same ledger sort chronologically.
func BackupObjectName(prefix, path string, now time.Time) string {
	return backupKeyPrefix(prefix, path) + now.UTC().Format(backupTimeLayout) + ".csv"
}

func backupKeyPrefix(prefix, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return base + "."
	}
	return prefix + "/" + base + "."
}

// Backup uploads the current on-disk ledger to object storage and returns the object name.
// A missing ledger file is not an error; nothing is uploaded and the name is empty.
func Backup(ctx context.Context, client storage.Client, bucket, prefix, path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", &IOError{Path: path, Op: "read", Err: err}
	}

	name := BackupObjectName(prefix, path, now)
	_, err = client.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload ledger backup %s: %w", name, err)
	}
	return name, nil
}

// ListBackups returns the backup objects of the ledger at path, newest first.
func ListBackups(ctx context.Context, client storage.Client, bucket, prefix, path string) ([]string, error) {
	var keys []string
	opts := minio.ListObjectsOptions{Prefix: backupKeyPrefix(prefix, path), Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list ledger backups: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// PruneBackups removes all but the newest keep backups of the ledger at path.
// keep <= 0 disables pruning.
func PruneBackups(ctx context.Context, client storage.Client, bucket, prefix, path string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	keys, err := ListBackups(ctx, client, bucket, prefix, path)
	if err != nil {
		return nil, err
	}
	if len(keys) <= keep {
		return nil, nil
	}

	stale := keys[keep:]
	for _, key := range stale {
		if err := client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return nil, fmt.Errorf("failed to remove ledger backup %s: %w", key, err)
		}
	}
	return stale, nil
}

// Restore downloads a backup object, checks that it parses as a ledger and
// atomically replaces the file at path with it.
func Restore(ctx context.Context, client storage.Client, bucket, object, path string) (*Set, error) {
	rc, err := client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download ledger backup %s: %w", object, err)
	}
	defer rc.Close()

	set, err := Read(rc, object)
	if err != nil {
		return nil, err
	}
	if err := Save(set, path); err != nil {
		return nil, err
	}
	return set, nil
}
