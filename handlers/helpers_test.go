package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/service"
	"github.com/kevinaaaquil/watchlist/session"
	"github.com/kevinaaaquil/watchlist/utils"
)

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

type testApp struct {
	t        *testing.T
	srv      *httptest.Server
	users    *fakeUsers
	movies   *fakeMovies
	mailer   *fakeMailer
	emailLog *fakeEmailLog
	posters  *fakePosters
	tokens   *service.ResetTokens
}

type appOption func(*RouterConfig, *testApp)

func withUniqueEmails(unique bool) appOption {
	return func(_ *RouterConfig, a *testApp) { a.users.unique = unique }
}

func withoutPosters() appOption {
	return func(cfg *RouterConfig, a *testApp) {
		cfg.Posters = nil
		a.posters = nil
	}
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens, err := service.NewResetTokens([]byte("test-secret"), 0)
	require.NoError(t, err)

	a := &testApp{
		t:        t,
		users:    newFakeUsers(true),
		movies:   newFakeMovies(),
		mailer:   &fakeMailer{},
		emailLog: &fakeEmailLog{},
		posters:  newFakePosters(),
		tokens:   tokens,
	}
	cfg := RouterConfig{
		Users:          a.users,
		Movies:         a.movies,
		Posters:        a.posters,
		Sessions:       session.NewRedisStore(rdb, time.Hour, false),
		Tokens:         tokens,
		Mailer:         a.mailer,
		EmailLog:       a.emailLog,
		BaseURL:        "http://watchlist.test",
		MaxPosterBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&cfg, a)
	}
	router, err := NewRouter(cfg)
	require.NoError(t, err)
	a.srv = httptest.NewServer(router)
	t.Cleanup(a.srv.Close)
	return a
}

// seedUser stores a user with a hashed password and returns its id.
func (a *testApp) seedUser(email, password string, movies ...string) string {
	a.t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(a.t, err)
	id := newID()
	if movies == nil {
		movies = []string{}
	}
	a.users.put(models.User{ID: id, Email: email, Password: hash, Movies: movies})
	return id
}

func (a *testApp) seedMovie(title string, year int) string {
	id := newID()
	a.movies.byID[id] = models.Movie{ID: id, Title: title, Director: "Someone", Year: year}
	return id
}

// browser is an HTTP client with its own cookie jar that does not follow redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *testApp) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &browser{
		t:    a.t,
		base: a.srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

// csrf reads the session's form token from a rendered page. Rendering pops
// pending flash messages, so call it before the request under test.
func (b *browser) csrf() string {
	b.t.Helper()
	_, body := b.get("/no-such-page")
	m := csrfMeta.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "csrf meta tag not found")
	return m[1]
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	vals := url.Values{}
	for k, v := range form {
		vals[k] = v
	}
	if _, ok := vals["csrf_token"]; !ok {
		vals.Set("csrf_token", b.csrf())
	}
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(vals.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) upload(path, field, filename string, data []byte) (*http.Response, string) {
	b.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(b.t, mw.WriteField("csrf_token", b.csrf()))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(b.t, err)
	_, err = fw.Write(data)
	require.NoError(b.t, err)
	require.NoError(b.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.base+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

func (b *browser) login(email, password string) {
	b.t.Helper()
	resp, _ := b.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	require.Equal(b.t, "/", resp.Header.Get("Location"))
}

func requireRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}
