package ledger

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads the ledger at path.
// A missing file yields an empty Set (no header) so the caller can decide what that means.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Set{}, nil
		}
		return nil, &IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	return Read(f, path)
}

// Read parses a ledger from r. name is only used in errors.
//
// Rows whose field count differs from the header are coerced: short rows are padded
// with empty strings and long rows are truncated. Blank lines are not rows; they
// are skipped and disappear on the next Save.
func Read(r io.Reader, name string) (*Set, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{Path: name, Err: ErrNoHeader}
	}
	if err != nil {
		return nil, readError(name, 1, err)
	}

	seen := make(map[string]struct{}, len(header))
	for _, col := range header {
		if _, dup := seen[col]; dup {
			return nil, &FormatError{Path: name, Line: 1, Err: fmt.Errorf("%w: %q", ErrDuplicateColumn, col)}
		}
		seen[col] = struct{}{}
	}

	set := NewSet(header)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, readError(name, line, err)
		}

		row = fitRow(row, len(header))
		rec := make(Record, len(header))
		for i, col := range header {
			rec[col] = row[i]
		}
		set.Records = append(set.Records, rec)
	}

	return set, nil
}

// readError reports CSV syntax errors as *FormatError and anything the
// underlying reader returned as *IOError.
func readError(name string, line int, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &FormatError{Path: name, Line: line, Err: err}
	}
	return &IOError{Path: name, Op: "read", Err: err}
}

// fitRow pads or truncates row to exactly n fields.
func fitRow(row []string, n int) []string {
	if len(row) > n {
		return row[:n]
	}
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

// Write serializes the header followed by every record in order.
func Write(w io.Writer, set *Set) error {
	if set.Empty() {
		return ErrNoHeader
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(set.Header); err != nil {
		return err
	}
	for _, rec := range set.Records {
		if err := cw.Write(set.Row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save replaces the ledger at path with set.
// The content is written to a temporary file in the same directory and renamed
// over the destination, so a failed save leaves the previous ledger untouched.
func Save(set *Set, path string) (err error) {
	if set.Empty() {
		return &IOError{Path: path, Op: "write", Err: ErrNoHeader}
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, set); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Path: path, Op: "sync", Err: err}
	}
	if err := tmp.Chmod(mode); err != nil {
		return &IOError{Path: path, Op: "chmod", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
