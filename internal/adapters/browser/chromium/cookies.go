package chromium

import (
	"math"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/bnema/followcheck/internal/domain"
)

func fromNetworkCookies(cookies []*proto.NetworkCookie) []domain.Cookie {
	out := make([]domain.Cookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := domain.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if !c.Session && c.Expires > 0 {
			sec, frac := math.Modf(float64(c.Expires))
			expires := time.Unix(int64(sec), int64(frac*1e9)).UTC()
			cookie.Expires = &expires
		}
		out = append(out, cookie)
	}
	return out
}

func toCookieParams(cookies []domain.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		param := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires != nil {
			param.Expires = proto.TimeSinceEpoch(float64(c.Expires.Unix()) + float64(c.Expires.Nanosecond())/1e9)
		}
		params = append(params, param)
	}
	return params
}
