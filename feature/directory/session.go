package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
)

// storedCookie is the on-disk form of a session cookie.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies restores cookies saved by SaveCookies into jar for u.
// A missing file is not an error.
func LoadCookies(jar http.CookieJar, u *url.URL, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cookie file %s: %w", path, err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(u, cookies)
	return nil
}

// SaveCookies writes the jar's cookies for u to path, readable by the owner only.
func SaveCookies(jar http.CookieJar, u *url.URL, path string) error {
	cookies := jar.Cookies(u)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file %s: %w", path, err)
	}
	return nil
}
