package entity

import "strings"

// Platform identifies a social-media platform a post can be generated for.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// SupportedPlatforms returns the fixed set of platforms content can be generated for,
// in display order.
func SupportedPlatforms() []Platform {
	return []Platform{PlatformLinkedIn, PlatformTwitter, PlatformFacebook, PlatformInstagram}
}

// ParsePlatform resolves a platform name case-insensitively.
// "x" is accepted as an alias for twitter.
func ParsePlatform(name string) (Platform, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "x" {
		n = string(PlatformTwitter)
	}
	for _, p := range SupportedPlatforms() {
		if string(p) == n {
			return p, true
		}
	}
	return "", false
}

// CharacterLimit returns the maximum post length for the platform.
func (p Platform) CharacterLimit() int {
	switch p {
	case PlatformTwitter:
		return 280
	case PlatformLinkedIn:
		return 3000
	case PlatformInstagram:
		return 2200
	case PlatformFacebook:
		return 63206
	default:
		return 0
	}
}

// Tone controls the voice of generated posts.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneInformative  Tone = "informative"
)

// DefaultTone is used when a caller does not request a tone.
const DefaultTone = ToneProfessional

// ParseTone resolves a tone name. An empty name yields DefaultTone.
func ParseTone(name string) (Tone, error) {
	n := Tone(strings.ToLower(strings.TrimSpace(name)))
	switch n {
	case "":
		return DefaultTone, nil
	case ToneProfessional, ToneCasual, ToneEnthusiastic, ToneInformative:
		return n, nil
	default:
		return "", invalid("tone", "unsupported tone %q", name)
	}
}

// PlatformPost is a formatted post ready to publish on one platform.
type PlatformPost struct {
	Platform       Platform `json:"platform"`
	Content        string   `json:"content"`
	Hashtags       []string `json:"hashtags"`
	CharacterCount int      `json:"character_count"`
}
