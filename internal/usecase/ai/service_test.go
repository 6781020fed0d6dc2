package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/pkg/requestctx"
)

func testArticle() *entity.NewsArticle {
	return &entity.NewsArticle{
		Title:   "Acme opens new plant",
		URL:     "https://news.example.com/acme-plant",
		Content: "Acme Corp opened a new manufacturing plant in Ohio, adding 500 jobs.",
	}
}

func newTestService(t *testing.T, clients ...ProviderClient) (*Service, *MockFormatter) {
	t.Helper()
	_, o := newTestStack(clients...)
	f := &MockFormatter{}
	s, err := NewService(o, f)
	require.NoError(t, err)
	return s, f
}

func TestNewService_Validation(t *testing.T) {
	_, o := newTestStack(newMockProvider("claude"))

	_, err := NewService(nil, &MockFormatter{})
	assert.True(t, IsKind(err, KindConfiguration))

	_, err = NewService(o, nil)
	assert.True(t, IsKind(err, KindConfiguration))
}

func TestService_ExtractHighlights_SortsByImportance(t *testing.T) {
	claude := newMockProvider("claude")
	claude.extractFn = func(_ context.Context, req HighlightRequest) ([]entity.NewsHighlight, error) {
		return []entity.NewsHighlight{
			{Text: "a", Importance: 0.4},
			{Text: "b", Importance: 0.9},
			{Text: "c", Importance: 0.9},
			{Text: "d", Importance: 0.1},
		}, nil
	}
	s, _ := newTestService(t, claude)

	result, err := s.ExtractHighlights(context.Background(), testArticle(), "Acme")
	require.NoError(t, err)

	texts := make([]string, 0, len(result.Highlights))
	for _, h := range result.Highlights {
		texts = append(texts, h.Text)
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, texts)
	assert.Equal(t, "claude", result.Provider)
	assert.False(t, result.FallbackUsed)
}

func TestService_ExtractHighlights_PassesRequest(t *testing.T) {
	var got HighlightRequest
	claude := newMockProvider("claude")
	claude.extractFn = func(_ context.Context, req HighlightRequest) ([]entity.NewsHighlight, error) {
		got = req
		return []entity.NewsHighlight{{Text: "x", Importance: 1}}, nil
	}
	s, _ := newTestService(t, claude)
	article := testArticle()

	_, err := s.ExtractHighlights(context.Background(), article, "  Acme  ")
	require.NoError(t, err)

	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, article.Title, got.Title)
	assert.Equal(t, article.URL, got.URL)
	assert.Equal(t, article.Text(), got.Text)
}

func TestService_ExtractHighlights_EmptyResult(t *testing.T) {
	claude := newMockProvider("claude")
	claude.extractFn = func(context.Context, HighlightRequest) ([]entity.NewsHighlight, error) {
		return nil, nil
	}
	s, _ := newTestService(t, claude)

	result, err := s.ExtractHighlights(context.Background(), testArticle(), "Acme")

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindValidationFailed))
	assert.ErrorIs(t, err, ErrEmptyHighlights)
}

func TestService_ExtractHighlights_ValidatesBeforeProviderCall(t *testing.T) {
	claude := newMockProvider("claude")
	s, _ := newTestService(t, claude)

	tests := []struct {
		name    string
		article *entity.NewsArticle
		company string
		target  error
	}{
		{name: "nil article", article: nil, company: "Acme", target: entity.ErrValidationFailed},
		{name: "empty article", article: &entity.NewsArticle{}, company: "Acme", target: entity.ErrValidationFailed},
		{name: "blank company", article: testArticle(), company: "   ", target: ErrEmptyCompanyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ExtractHighlights(context.Background(), tt.article, tt.company)
			assert.True(t, IsKind(err, KindValidationFailed))
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Equal(t, int32(0), claude.extracts.Load())
	assert.Equal(t, int32(0), claude.probes.Load())
}

func TestService_ExtractHighlights_Fallback(t *testing.T) {
	claude := newMockProvider("claude")
	claude.extractFn = func(context.Context, HighlightRequest) ([]entity.NewsHighlight, error) {
		return nil, errors.New("529 overloaded")
	}
	openai := newMockProvider("openai")
	s, _ := newTestService(t, claude, openai)

	result, err := s.ExtractHighlights(context.Background(), testArticle(), "Acme")
	require.NoError(t, err)
	assert.Equal(t, "openai", result.Provider)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, "openai highlight", result.Highlights[0].Text)
}

func TestService_GenerateSocialContent_FiltersPlatforms(t *testing.T) {
	s, f := newTestService(t, newMockProvider("claude"))
	highlights := []entity.NewsHighlight{{Text: "Plant opened", Importance: 4}}

	content, err := s.GenerateSocialContent(context.Background(), highlights, "Acme",
		[]string{"LinkedIn", "myspace", "x", "linkedin"}, "")
	require.NoError(t, err)

	req := f.last()
	assert.Equal(t, []entity.Platform{entity.PlatformLinkedIn, entity.PlatformTwitter}, req.Platforms)
	assert.Equal(t, entity.DefaultTone, req.Tone)
	require.Len(t, content.Posts, 2)
	assert.Equal(t, "Acme: Plant opened", content.Posts[entity.PlatformTwitter].Content)
	assert.Contains(t, content.Posts, entity.PlatformLinkedIn)
	assert.GreaterOrEqual(t, content.ProcessingTime.Nanoseconds(), int64(0))
}

func TestService_GenerateSocialContent_NoValidPlatforms(t *testing.T) {
	s, f := newTestService(t, newMockProvider("claude"))
	highlights := []entity.NewsHighlight{{Text: "Plant opened", Importance: 4}}

	for _, platforms := range [][]string{nil, {}, {"myspace", "friendster"}} {
		content, err := s.GenerateSocialContent(context.Background(), highlights, "Acme", platforms, entity.ToneCasual)
		assert.Nil(t, content)
		assert.True(t, IsKind(err, KindValidationFailed))
		assert.ErrorIs(t, err, ErrNoValidPlatforms)
	}
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestService_GenerateSocialContent_EmptyHighlights(t *testing.T) {
	s, f := newTestService(t, newMockProvider("claude"))

	_, err := s.GenerateSocialContent(context.Background(), nil, "Acme", []string{"twitter"}, entity.ToneCasual)

	assert.True(t, IsKind(err, KindValidationFailed))
	assert.ErrorIs(t, err, ErrEmptyHighlights)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestService_GenerateSocialContent_FormatterFailure(t *testing.T) {
	s, f := newTestService(t, newMockProvider("claude"))
	f.formatFn = func(context.Context, FormatRequest) ([]entity.PlatformPost, error) {
		return nil, errors.New("template error")
	}

	_, err := s.GenerateSocialContent(context.Background(),
		[]entity.NewsHighlight{{Text: "x"}}, "Acme", []string{"twitter"}, entity.ToneCasual)

	var aiErr *AIServiceError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, KindProviderOperationFailed, aiErr.Kind)
	assert.Equal(t, "content-formatter", aiErr.Service)
}

func TestService_ProcessArticle(t *testing.T) {
	s, f := newTestService(t, newMockProvider("claude"))
	ctx := requestctx.WithRequestID(context.Background(), "req-123")

	result, err := s.ProcessArticle(ctx, testArticle(), "Acme", []string{"twitter", "facebook"}, entity.ToneInformative)
	require.NoError(t, err)

	assert.Equal(t, "claude", result.Highlights.Provider)
	assert.Len(t, result.Content.Posts, 2)
	assert.Equal(t, entity.ToneInformative, f.last().Tone)
	assert.Equal(t, "Acme", f.last().CompanyName)
}

func TestService_ProcessArticle_ShortCircuits(t *testing.T) {
	claude := newMockProvider("claude")
	claude.extractFn = func(context.Context, HighlightRequest) ([]entity.NewsHighlight, error) {
		return nil, errors.New("down")
	}
	openai := newMockProvider("openai")
	openai.extractFn = claude.extractFn
	s, f := newTestService(t, claude, openai)

	result, err := s.ProcessArticle(context.Background(), testArticle(), "Acme", []string{"twitter"}, entity.ToneCasual)

	assert.Nil(t, result)
	assert.True(t, IsKind(err, KindAllProvidersFailed))
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestService_Health(t *testing.T) {
	claude := newMockProvider("claude")
	s, _ := newTestService(t, claude, newMockProvider("openai"))

	snap, err := s.Health(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "claude", snap.PrimaryService)
	assert.Equal(t, "openai", snap.FallbackService)

	_, err = s.Health(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), claude.probes.Load())
}

func TestFilterPlatforms(t *testing.T) {
	got := FilterPlatforms([]string{" Instagram ", "TWITTER", "x", "tiktok", "facebook"})

	assert.Equal(t, []entity.Platform{entity.PlatformInstagram, entity.PlatformTwitter, entity.PlatformFacebook}, got)
	assert.Empty(t, FilterPlatforms(nil))
}
