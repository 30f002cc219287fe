package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialdl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder counts how often each fake strategy ran
type recorder struct {
	calls []string
}

func (r *recorder) ok(name string, result *model.ResolutionResult) Strategy {
	return Func(name, func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		r.calls = append(r.calls, name)
		return result, nil
	})
}

func (r *recorder) fail(name string, err error) Strategy {
	return Func(name, func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		r.calls = append(r.calls, name)
		return nil, err
	})
}

func video(url string) *model.ResolutionResult {
	return &model.ResolutionResult{
		Title:   "clip",
		Formats: []model.MediaFormat{{Quality: "HD", URL: url, Extension: "mp4"}},
	}
}

func TestResolveShortCircuitsOnFirstSuccess(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(Chains{
		model.PlatformTikTok: {
			rec.fail("first", errors.New("boom")),
			rec.ok("second", video("https://cdn.example/2.mp4")),
			rec.ok("third", video("https://cdn.example/3.mp4")),
		},
	})

	result, err := engine.Resolve(context.Background(), "https://www.tiktok.com/@u/video/1", model.PlatformTikTok)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, rec.calls)
	assert.Equal(t, "https://cdn.example/2.mp4", result.Formats[0].URL)
	assert.Equal(t, "second", result.Strategy)
	assert.Equal(t, model.PlatformTikTok, result.Platform)
	assert.True(t, result.Success)
}

func TestResolveAllFailCollectsOneMessagePerStrategy(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(Chains{
		model.PlatformYouTube: {
			rec.fail("a", errors.New("network down")),
			rec.ok("b", &model.ResolutionResult{Title: "nothing"}),
			rec.fail("c", errors.New("parse error")),
		},
	})

	result, err := engine.Resolve(context.Background(), "https://youtu.be/x", model.PlatformYouTube)
	assert.Nil(t, result)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, model.PlatformYouTube, failure.Platform)
	assert.Equal(t, "https://youtu.be/x", failure.URL)
	require.Len(t, failure.Attempts, 3)
	assert.Equal(t, []string{"a", "b", "c"}, failure.Strategies())
	assert.EqualError(t, failure.Attempts[0].Err, "network down")
	assert.ErrorIs(t, failure.Attempts[1].Err, ErrEmptyResult)
	assert.Equal(t, []string{"a: network down", "b: " + ErrEmptyResult.Error(), "c: parse error"}, failure.Messages())
	assert.Nil(t, failure.Cause)
	assert.Contains(t, failure.Error(), "all 3 strategies failed")
}

func TestResolveRejectsEmptyResultAndContinues(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(Chains{
		model.PlatformFacebook: {
			rec.ok("empty", &model.ResolutionResult{Formats: []model.MediaFormat{}}),
			rec.ok("nil", nil),
			rec.ok("good", video("https://cdn.example/fb.mp4")),
		},
	})

	result, err := engine.Resolve(context.Background(), "https://fb.watch/x", model.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "good", result.Strategy)
	assert.Equal(t, []string{"empty", "nil", "good"}, rec.calls)
}

func TestResolveAcceptsBestURLWithoutFormats(t *testing.T) {
	engine := NewEngine(Chains{
		model.PlatformSnapchat: {
			Func("merged", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
				return &model.ResolutionResult{BestURL: "https://cdn.example/merged.mp4"}, nil
			}),
		},
	})

	result, err := engine.Resolve(context.Background(), "https://snapchat.com/x", model.PlatformSnapchat)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/merged.mp4", result.BestURL)
	assert.NotNil(t, result.Formats)
	assert.Empty(t, result.Formats)
	assert.Equal(t, "Snapchat Video", result.Title)
}

func TestResolveKeepsStrategyBestURLAndOrder(t *testing.T) {
	formats := []model.MediaFormat{
		{Quality: "360p", URL: "https://cdn.example/360.mp4"},
		{Quality: "1080p", URL: "https://cdn.example/1080.mp4"},
	}
	engine := NewEngine(Chains{
		model.PlatformYouTube: {
			Func("custom", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
				return &model.ResolutionResult{Formats: formats, BestURL: "https://cdn.example/merged.mp4"}, nil
			}),
		},
	})

	result, err := engine.Resolve(context.Background(), "https://youtu.be/x", model.PlatformYouTube)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/merged.mp4", result.BestURL)
	assert.Equal(t, "360p", result.Formats[0].Quality, "engine must not re-sort")
}

func TestResolveFillsBestURLFromFirstFormat(t *testing.T) {
	engine := NewEngine(Chains{
		model.PlatformTikTok: {Func("one", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
			return video("https://cdn.example/first.mp4"), nil
		})},
	})

	result, err := engine.Resolve(context.Background(), "https://tiktok.com/x", model.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/first.mp4", result.BestURL)
}

func TestResolveNoChain(t *testing.T) {
	engine := NewEngine(Chains{})

	_, err := engine.Resolve(context.Background(), "https://tiktok.com/x", model.PlatformTikTok)
	assert.ErrorIs(t, err, ErrNoChain)
}

func TestResolveAttemptTimeoutMovesOn(t *testing.T) {
	slow := Func("slow", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	fast := Func("fast", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		return video("https://cdn.example/fast.mp4"), nil
	})
	engine := NewEngine(Chains{model.PlatformTwitter: {slow, fast}}, WithAttemptTimeout(20*time.Millisecond))

	result, err := engine.Resolve(context.Background(), "https://x.com/u/status/1", model.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, "fast", result.Strategy)
}

type hinted struct {
	Strategy
	timeout time.Duration
}

func (h hinted) Timeout() time.Duration { return h.timeout }

func TestResolveHonoursTimeoutHint(t *testing.T) {
	var deadline time.Duration
	quick := Func("quick", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		deadline = time.Until(d)
		return video("https://cdn.example/p.mp4"), nil
	})
	engine := NewEngine(Chains{model.PlatformTikTok: {hinted{quick, 2 * time.Second}}}, WithAttemptTimeout(time.Minute))

	_, err := engine.Resolve(context.Background(), "https://tiktok.com/x", model.PlatformTikTok)
	require.NoError(t, err)
	assert.LessOrEqual(t, deadline, 2*time.Second)
}

func TestResolveChainBudgetIsTerminal(t *testing.T) {
	rec := &recorder{}
	slow := Func("slow", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		rec.calls = append(rec.calls, "slow")
		<-ctx.Done()
		return nil, ctx.Err()
	})
	engine := NewEngine(Chains{
		model.PlatformInstagram: {slow, rec.ok("never", video("https://cdn.example/x.mp4"))},
	}, WithChainBudget(20*time.Millisecond), WithAttemptTimeout(time.Minute))

	_, err := engine.Resolve(context.Background(), "https://instagram.com/p/x", model.PlatformInstagram)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"slow"}, rec.calls)
	assert.Len(t, failure.Attempts, 1)
}

func TestResolveStopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	first := Func("first", func(c context.Context, rawURL string) (*model.ResolutionResult, error) {
		rec.calls = append(rec.calls, "first")
		cancel()
		return nil, errors.New("interrupted")
	})
	engine := NewEngine(Chains{model.PlatformTikTok: {first, rec.ok("second", video("https://cdn.example/x.mp4"))}})

	_, err := engine.Resolve(ctx, "https://tiktok.com/x", model.PlatformTikTok)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first"}, rec.calls)
}

func TestResolveRecoversFromPanickingStrategy(t *testing.T) {
	broken := Func("broken", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		panic("selector exploded")
	})
	good := Func("good", func(ctx context.Context, rawURL string) (*model.ResolutionResult, error) {
		return video("https://cdn.example/ok.mp4"), nil
	})
	engine := NewEngine(Chains{model.PlatformFacebook: {broken, good}})

	result, err := engine.Resolve(context.Background(), "https://facebook.com/v", model.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "good", result.Strategy)
}

func TestChainNames(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(Chains{model.PlatformTikTok: {rec.fail("a", nil), rec.fail("b", nil)}})
	assert.Equal(t, []string{"a", "b"}, engine.Chain(model.PlatformTikTok))
	assert.Empty(t, engine.Chain(model.PlatformYouTube))
}
