package authflag

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// CookieStorage reads items from request cookies and writes them back as
// Set-Cookie headers, so a server-rendered widget persists the flag in the
// shopper's browser across page loads.
type CookieStorage struct {
	r      *http.Request
	w      http.ResponseWriter
	path   string
	maxAge time.Duration
	secure bool

	mu      sync.Mutex
	written map[string]string
}

// NewCookieStorage returns a storage bound to one request/response pair.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{
		r:       r,
		w:       w,
		path:    "/",
		maxAge:  365 * 24 * time.Hour,
		secure:  secure,
		written: make(map[string]string),
	}
}

func (c *CookieStorage) GetItem(key string) (string, bool, error) {
	c.mu.Lock()
	if v, ok := c.written[key]; ok {
		c.mu.Unlock()
		return v, true, nil
	}
	c.mu.Unlock()

	ck, err := c.r.Cookie(key)
	if err != nil {
		return "", false, nil
	}
	v, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *CookieStorage) SetItem(key, value string) error {
	c.mu.Lock()
	c.written[key] = value
	c.mu.Unlock()

	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     c.path,
		MaxAge:   int(c.maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
