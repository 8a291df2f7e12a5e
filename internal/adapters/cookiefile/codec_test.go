package cookiefile

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetscapeRoundTrip(t *testing.T) {
	t.Parallel()

	const n = 5
	base := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n# generated\n\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, ".instagram.com\tTRUE\t/\tTRUE\t%d\tcookie%d\tvalue%d\n", base+int64(i), i, i)
	}

	jar, err := Parse([]byte(b.String()))
	require.NoError(t, err)
	require.Equal(t, n, jar.Len())

	for i, cookie := range jar.Cookies() {
		assert.Equal(t, fmt.Sprintf("cookie%d", i), cookie.Name)
		assert.Equal(t, fmt.Sprintf("value%d", i), cookie.Value)
		assert.Equal(t, ".instagram.com", cookie.Domain)
		assert.True(t, cookie.Secure)
		require.NotNil(t, cookie.Expires)
		assert.Equal(t, base+int64(i), cookie.Expires.Unix())
	}
}

func TestParseNetscapeSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	payload := strings.Join([]string{
		"# Netscape HTTP Cookie File",
		".instagram.com\tTRUE\t/\tFALSE\t0\tcsrftoken\tabc",
		"broken\tline\twith\tfew\tfields",
		"#HttpOnly_.instagram.com\tTRUE\t/\tTRUE\tnot-a-number\tsessionid\txyz",
		".instagram.com\tTRUE\t/\tFALSE\t1700000000\tds_user_id\t42",
	}, "\r\n")

	jar, err := Parse([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, 3, jar.Len())

	csrf, ok := jar.Get("csrftoken")
	require.True(t, ok)
	assert.Nil(t, csrf.Expires)

	session, ok := jar.Get("sessionid")
	require.True(t, ok)
	assert.True(t, session.HTTPOnly)
	assert.Nil(t, session.Expires)
	assert.Equal(t, "xyz", session.Value)
}

func TestParseNameValueLines(t *testing.T) {
	t.Parallel()

	payload := "\ufeffsessionid=abc; csrftoken=\"def\"; Path=/; HttpOnly\n# comment\nnot a cookie\nds_user_id = 42\nsessionid=override\n"

	jar, err := Parse([]byte(payload))
	require.NoError(t, err)

	cookies := jar.Cookies()
	require.Len(t, cookies, 3)
	assert.Equal(t, domain.Cookie{Name: "sessionid", Value: "override", Domain: ".instagram.com", Path: "/"}, cookies[0])
	assert.Equal(t, "def", cookies[1].Value)
	assert.Equal(t, "42", cookies[2].Value)
}

func TestParseEmptyFails(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "\n\n", "# Netscape HTTP Cookie File\n# nothing here\n", "just some text"} {
		_, err := Parse([]byte(payload))
		assert.ErrorIs(t, err, domain.ErrCookieParse, "payload %q", payload)
	}
}

func TestFormatNetscapeParsesBack(t *testing.T) {
	t.Parallel()

	expires := time.Date(2027, 6, 1, 12, 0, 0, 0, time.UTC)
	original := domain.NewCookieJar(
		domain.Cookie{Name: "sessionid", Value: "s", Domain: ".instagram.com", Path: "/", Expires: &expires, HTTPOnly: true, Secure: true},
		domain.Cookie{Name: "mid", Value: "m", Domain: "www.instagram.com", Path: "/"},
	)

	data, err := Codec{}.Encode(original)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Netscape HTTP Cookie File"))

	decoded, err := Codec{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original.Cookies(), decoded.Cookies())
}
