package formatter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-pulse/internal/domain/entity"
	"company-pulse/internal/usecase/ai"
	"company-pulse/internal/utils/text"
)

func sampleHighlights() []entity.NewsHighlight {
	return []entity.NewsHighlight{
		{Text: "Acme posts record quarterly revenue", Importance: 5, Category: "financial"},
		{Text: "New plant opens in Ohio", Importance: 4, Category: "market"},
		{Text: "Partnership with Globex announced", Importance: 3, Category: "partnership"},
		{Text: "Office coffee upgraded", Importance: 1, Category: "general"},
	}
}

func TestTemplate_Format(t *testing.T) {
	f := NewTemplate()

	posts, err := f.Format(context.Background(), ai.FormatRequest{
		CompanyName: "Acme Corp",
		Highlights:  sampleHighlights(),
		Platforms:   []entity.Platform{entity.PlatformTwitter, entity.PlatformLinkedIn},
		Tone:        entity.ToneEnthusiastic,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	tw := posts[0]
	assert.Equal(t, entity.PlatformTwitter, tw.Platform)
	assert.True(t, strings.HasPrefix(tw.Content, "Big news from Acme Corp! 🎉"))
	assert.Contains(t, tw.Content, "Acme posts record quarterly revenue")
	assert.NotContains(t, tw.Content, "New plant opens", "twitter only carries the top highlight")
	assert.Equal(t, []string{"#AcmeCorp", "#Financial"}, tw.Hashtags)
	assert.Equal(t, text.CountRunes(tw.Content), tw.CharacterCount)

	li := posts[1]
	assert.Contains(t, li.Content, "• New plant opens in Ohio")
	assert.Contains(t, li.Content, "• Office coffee upgraded")
	assert.Equal(t, []string{"#AcmeCorp", "#Financial", "#Market", "#Partnership"}, li.Hashtags)
}

func TestTemplate_Format_RespectsCharacterLimit(t *testing.T) {
	f := NewTemplate()
	long := strings.Repeat("very long highlight text ", 40)

	posts, err := f.Format(context.Background(), ai.FormatRequest{
		CompanyName: "Acme",
		Highlights:  []entity.NewsHighlight{{Text: long, Importance: 5, Category: "product"}},
		Platforms:   entity.SupportedPlatforms(),
		Tone:        entity.ToneProfessional,
	})
	require.NoError(t, err)

	for _, p := range posts {
		assert.LessOrEqual(t, p.CharacterCount, p.Platform.CharacterLimit(), p.Platform)
	}
	assert.True(t, strings.HasSuffix(posts[1].Content, "#Acme #Product"), "hashtags survive truncation")
	assert.Contains(t, posts[1].Content, ellipsis)
}

func TestTemplate_Format_DefaultsUnknownTone(t *testing.T) {
	posts, err := NewTemplate().Format(context.Background(), ai.FormatRequest{
		CompanyName: "Acme",
		Highlights:  sampleHighlights(),
		Platforms:   []entity.Platform{entity.PlatformFacebook},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(posts[0].Content, "Update from Acme:"))
}

func TestTemplate_Format_Errors(t *testing.T) {
	f := NewTemplate()

	_, err := f.Format(context.Background(), ai.FormatRequest{CompanyName: "Acme", Platforms: []entity.Platform{entity.PlatformTwitter}})
	assert.ErrorIs(t, err, ErrNoHighlights)

	_, err = f.Format(context.Background(), ai.FormatRequest{
		CompanyName: "Acme",
		Highlights:  sampleHighlights(),
		Platforms:   []entity.Platform{"myspace"},
	})
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Format(ctx, ai.FormatRequest{CompanyName: "Acme", Highlights: sampleHighlights()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashtags(t *testing.T) {
	tags := Hashtags("acme corp.", []entity.NewsHighlight{
		{Category: "financial"},
		{Category: "Financial"},
		{Category: "general"},
		{Category: "legal"},
	}, 3)

	assert.Equal(t, []string{"#AcmeCorp", "#Financial", "#Legal"}, tags)
	assert.Empty(t, Hashtags("!!!", nil, 3))
}
