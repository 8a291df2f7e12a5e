package ports

import "github.com/bnema/followcheck/internal/domain"

type CookieCodec interface {
	Decode(data []byte) (*domain.CookieJar, error)
	Encode(jar *domain.CookieJar) ([]byte, error)
}
