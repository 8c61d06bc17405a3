package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/paywall-reader/internal/bypass"
	"github.com/user/paywall-reader/internal/entity"
	"github.com/user/paywall-reader/internal/extractor"
	"github.com/user/paywall-reader/internal/repository"
	"go.uber.org/zap"
)

const articleURL = "https://www.ft.com/content/12345"

// fakeBrowser returns the scripted response for each call in order.
type fakeBrowser struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     []string
}

type fakeResponse struct {
	html string
	err  error
}

func (f *fakeBrowser) Render(ctx context.Context, url string) (*entity.RenderedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.calls)
	f.calls = append(f.calls, url)
	if idx >= len(f.responses) {
		return nil, fmt.Errorf("unexpected call %d", idx+1)
	}
	r := f.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &entity.RenderedPage{RequestedURL: url, HTML: r.html}, nil
}

type fakeCache struct {
	entries map[string]*entity.Article
	getErr  error
	sets    int
}

func cacheKey(url string, method int) string { return fmt.Sprintf("%d|%s", method, url) }

func (c *fakeCache) Get(ctx context.Context, url string, method int) (*entity.Article, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	a, ok := c.entries[cacheKey(url, method)]
	return a, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, a *entity.Article, ttl time.Duration) error {
	c.sets++
	c.entries[cacheKey(a.SourceURL, a.Method)] = a
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }

type fakeArchive struct {
	saved   []*entity.Article
	failed  []*entity.FailedFetch
	deleted []string
	saveErr error
}

func (a *fakeArchive) Save(ctx context.Context, article *entity.Article) error {
	a.saved = append(a.saved, article)
	return a.saveErr
}

func (a *fakeArchive) FindLatest(ctx context.Context, url string) (*entity.Article, error) {
	if len(a.saved) == 0 {
		return nil, repository.ErrNotFound
	}
	return a.saved[len(a.saved)-1], nil
}

func (a *fakeArchive) Ping(ctx context.Context) error { return nil }

func (a *fakeArchive) SaveOrUpdate(ctx context.Context, f *entity.FailedFetch) error {
	a.failed = append(a.failed, f)
	return nil
}

func (a *fakeArchive) Delete(ctx context.Context, url string, method int) error {
	a.deleted = append(a.deleted, cacheKey(url, method))
	return nil
}

const (
	failingPage    = `<html><body><div>short teaser</div></body></html>`
	succeedingPage = `<html><body><h1>Found it</h1><article><p>Full story.</p></article></body></html>`
)

func newTestReader(browser repository.BrowserRepository, opts ...Option) Reader {
	return NewReader(browser, extractor.New(extractor.Rules{}), zap.NewNop(), opts...)
}

// TestRead_SingleMethod verifies the bypass URL and extracted fields
func TestRead_SingleMethod(t *testing.T) {
	browser := &fakeBrowser{responses: []fakeResponse{{html: succeedingPage}}}

	article, err := newTestReader(browser).Read(context.Background(), articleURL, bypass.ArchiveFoOldest)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://archive.fo/oldest/" + articleURL}, browser.calls)
	assert.Equal(t, articleURL, article.SourceURL)
	assert.Equal(t, 3, article.Method)
	assert.Equal(t, "Found it", article.Title)
	assert.Equal(t, "Full story.", article.Body)
}

// TestRead_ReturnsInsufficientContent verifies a single read does not apply the success predicate
func TestRead_ReturnsInsufficientContent(t *testing.T) {
	browser := &fakeBrowser{responses: []fakeResponse{{html: failingPage}}}

	article, err := newTestReader(browser).Read(context.Background(), articleURL, bypass.RemovePaywalls)

	require.NoError(t, err)
	assert.False(t, article.Succeeded())
	assert.Equal(t, "short teaser", article.Body)
}

func TestRead_SessionError(t *testing.T) {
	sessionErr := fmt.Errorf("%w: net::ERR_CONNECTION_RESET", repository.ErrNavigationFailed)
	browser := &fakeBrowser{responses: []fakeResponse{{err: sessionErr}}}
	archive := &fakeArchive{}

	article, err := newTestReader(browser, WithArchive(archive, archive)).Read(context.Background(), articleURL, bypass.RemovePaywalls)

	assert.Nil(t, article)
	assert.ErrorIs(t, err, repository.ErrNavigationFailed)
	require.Len(t, archive.failed, 1)
	assert.Equal(t, 1, archive.failed[0].Method)
	assert.Contains(t, archive.failed[0].Reason, "ERR_CONNECTION_RESET")
}

func TestRead_InvalidMethodUsesDefault(t *testing.T) {
	browser := &fakeBrowser{responses: []fakeResponse{{html: succeedingPage}}}

	article, err := newTestReader(browser).Read(context.Background(), articleURL, bypass.Method(9))

	require.NoError(t, err)
	assert.Equal(t, 1, article.Method)
	assert.Equal(t, []string{"https://removepaywalls.com/" + articleURL}, browser.calls)
}

// TestReadAny_SixthMethodSucceeds verifies five failures then a success, with no seventh call
func TestReadAny_SixthMethodSucceeds(t *testing.T) {
	browser := &fakeBrowser{responses: []fakeResponse{
		{html: failingPage},
		{html: failingPage},
		{err: repository.ErrNavigationFailed},
		{html: failingPage},
		{html: failingPage},
		{html: succeedingPage},
	}}

	article, err := newTestReader(browser).ReadAny(context.Background(), articleURL)

	require.NoError(t, err)
	assert.Equal(t, 6, article.Method)
	assert.Equal(t, "Found it", article.Title)
	require.Len(t, browser.calls, 6)
	for i, m := range bypass.All() {
		assert.Equal(t, bypass.BuildURL(articleURL, m), browser.calls[i])
	}
}

// TestReadAny_StopsAtFirstSuccess verifies the first satisfying result wins
func TestReadAny_StopsAtFirstSuccess(t *testing.T) {
	longBody := `<html><body><article><p>` + strings.Repeat("word ", 120) + `</p></article></body></html>`
	browser := &fakeBrowser{responses: []fakeResponse{
		{html: failingPage},
		{html: longBody},
		{html: succeedingPage},
	}}

	article, err := newTestReader(browser).ReadAny(context.Background(), articleURL)

	require.NoError(t, err)
	assert.Equal(t, 2, article.Method)
	assert.Empty(t, article.Title)
	assert.Len(t, browser.calls, 2)
}

func TestReadAny_AllFail(t *testing.T) {
	var responses []fakeResponse
	for i := 0; i < 6; i++ {
		responses = append(responses, fakeResponse{html: failingPage})
	}
	browser := &fakeBrowser{responses: responses}

	article, err := newTestReader(browser).ReadAny(context.Background(), articleURL)

	assert.Nil(t, article)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Len(t, browser.calls, 6)
}

func TestReadAny_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	browser := &fakeBrowser{}

	_, err := newTestReader(browser).ReadAny(ctx, articleURL)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, browser.calls)
}

// TestRead_CacheHit verifies a cached result skips the browser entirely
func TestRead_CacheHit(t *testing.T) {
	cached := &entity.Article{SourceURL: articleURL, Method: 2, Title: "From cache"}
	cache := &fakeCache{entries: map[string]*entity.Article{cacheKey(articleURL, 2): cached}}
	browser := &fakeBrowser{}

	article, err := newTestReader(browser, WithCache(cache, time.Hour)).Read(context.Background(), articleURL, bypass.ArchiveTodayLatest)

	require.NoError(t, err)
	assert.Same(t, cached, article)
	assert.Empty(t, browser.calls)
}

// TestRead_CachesOnlySuccess verifies insufficient results are not cached
func TestRead_CachesOnlySuccess(t *testing.T) {
	cache := &fakeCache{entries: map[string]*entity.Article{}}
	browser := &fakeBrowser{responses: []fakeResponse{{html: failingPage}, {html: succeedingPage}}}
	reader := newTestReader(browser, WithCache(cache, time.Hour))

	_, err := reader.Read(context.Background(), articleURL, bypass.RemovePaywalls)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.sets)

	_, err = reader.Read(context.Background(), articleURL, bypass.RemovePaywalls)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}

func TestRead_CacheErrorFallsThrough(t *testing.T) {
	cache := &fakeCache{entries: map[string]*entity.Article{}, getErr: errors.New("connection refused")}
	browser := &fakeBrowser{responses: []fakeResponse{{html: succeedingPage}}}

	article, err := newTestReader(browser, WithCache(cache, time.Hour)).Read(context.Background(), articleURL, bypass.RemovePaywalls)

	require.NoError(t, err)
	assert.Equal(t, "Found it", article.Title)
	assert.Len(t, browser.calls, 1)
}

// TestRead_ArchiveErrorsAreNotFatal verifies store failures never fail a read
func TestRead_ArchiveErrorsAreNotFatal(t *testing.T) {
	archive := &fakeArchive{saveErr: errors.New("db down")}
	browser := &fakeBrowser{responses: []fakeResponse{{html: succeedingPage}}}

	article, err := newTestReader(browser, WithArchive(archive, archive)).Read(context.Background(), articleURL, bypass.RemovePaywalls5)

	require.NoError(t, err)
	assert.Equal(t, 6, article.Method)
	assert.Len(t, archive.saved, 1)
	assert.Equal(t, []string{cacheKey(articleURL, 6)}, archive.deleted)
}

func TestArchived(t *testing.T) {
	_, err := newTestReader(&fakeBrowser{}).Archived(context.Background(), articleURL)
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	archive := &fakeArchive{}
	reader := newTestReader(&fakeBrowser{}, WithArchive(archive, archive))
	_, err = reader.Archived(context.Background(), articleURL)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	archive.saved = append(archive.saved, &entity.Article{SourceURL: articleURL, Title: "Old"})
	got, err := reader.Archived(context.Background(), articleURL)
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Title)
}

// blockingBrowser records how many sessions overlap.
type blockingBrowser struct {
	mu      sync.Mutex
	active  int
	maxSeen int
}

func (b *blockingBrowser) Render(ctx context.Context, url string) (*entity.RenderedPage, error) {
	b.mu.Lock()
	b.active++
	if b.active > b.maxSeen {
		b.maxSeen = b.active
	}
	b.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	return &entity.RenderedPage{HTML: succeedingPage}, nil
}

// TestRead_SessionsNeverOverlap verifies concurrent callers are serialized
func TestRead_SessionsNeverOverlap(t *testing.T) {
	browser := &blockingBrowser{}
	reader := newTestReader(browser)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = reader.Read(context.Background(), articleURL, bypass.RemovePaywalls)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, browser.maxSeen)
}

// gateBrowser holds every session open until release is closed.
type gateBrowser struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *gateBrowser) Render(ctx context.Context, url string) (*entity.RenderedPage, error) {
	b.calls.Add(1)
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	return &entity.RenderedPage{HTML: succeedingPage}, nil
}

// TestRead_WaitingSessionHonorsCancellation verifies a caller queued behind a
// running session gives up when its context ends, without starting a browser
func TestRead_WaitingSessionHonorsCancellation(t *testing.T) {
	browser := &gateBrowser{started: make(chan struct{}, 1), release: make(chan struct{})}
	reader := newTestReader(browser)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = reader.Read(context.Background(), articleURL, bypass.RemovePaywalls)
	}()
	<-browser.started

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := reader.Read(ctx, articleURL, bypass.ArchiveTodayLatest)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("queued read did not return after cancellation")
	}

	close(browser.release)
	<-firstDone
	assert.EqualValues(t, 1, browser.calls.Load())
}
