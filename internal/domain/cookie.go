package domain

import "time"

const (
	DefaultCookieDomain = ".instagram.com"
	DefaultCookiePath   = "/"
)

type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  *time.Time
	HTTPOnly bool
	Secure   bool
}

type CookieKey struct {
	Name   string
	Domain string
	Path   string
}

func (c Cookie) Key() CookieKey {
	return CookieKey{Name: c.Name, Domain: c.Domain, Path: c.Path}
}

// Expired reports whether the cookie carries an expiry at or before now. Session cookies never expire here.
func (c Cookie) Expired(now time.Time) bool {
	return c.Expires != nil && !c.Expires.After(now)
}

// CookieJar keeps cookies in insertion order, unique by (name, domain, path).
// A later Put with the same key replaces the earlier cookie in place.
type CookieJar struct {
	cookies []Cookie
	index   map[CookieKey]int
}

func NewCookieJar(cookies ...Cookie) *CookieJar {
	jar := &CookieJar{index: map[CookieKey]int{}}
	for _, cookie := range cookies {
		jar.Put(cookie)
	}
	return jar
}

func (j *CookieJar) Put(cookie Cookie) {
	if j.index == nil {
		j.index = map[CookieKey]int{}
	}
	if cookie.Domain == "" {
		cookie.Domain = DefaultCookieDomain
	}
	if cookie.Path == "" {
		cookie.Path = DefaultCookiePath
	}

	key := cookie.Key()
	if idx, ok := j.index[key]; ok {
		j.cookies[idx] = cookie
		return
	}
	j.index[key] = len(j.cookies)
	j.cookies = append(j.cookies, cookie)
}

func (j *CookieJar) Len() int {
	if j == nil {
		return 0
	}
	return len(j.cookies)
}

func (j *CookieJar) Cookies() []Cookie {
	if j == nil {
		return nil
	}
	out := make([]Cookie, len(j.cookies))
	copy(out, j.cookies)
	return out
}

func (j *CookieJar) Get(name string) (Cookie, bool) {
	if j == nil {
		return Cookie{}, false
	}
	for _, cookie := range j.cookies {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return Cookie{}, false
}

// Usable reports whether the jar holds at least one unexpired cookie.
func (j *CookieJar) Usable(now time.Time) bool {
	if j == nil {
		return false
	}
	for _, cookie := range j.cookies {
		if !cookie.Expired(now) {
			return true
		}
	}
	return false
}
