package discovery

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

type MatchMode int

const (
	NoMatch MatchMode = iota
	ExactMatch
	SubstringMatch
	CompactMatch
)

func (m MatchMode) String() string {
	switch m {
	case ExactMatch:
		return "exact"
	case SubstringMatch:
		return "substring"
	case CompactMatch:
		return "compact"
	}
	return "none"
}

type Voice struct {
	Name    string
	Lang    string
	Female  bool
	Default bool
}

// Narrator speaks text with the given voice.
type Narrator interface {
	Voices() []Voice
	Speak(ctx context.Context, text string, voice Voice) error
}

func langIs(v Voice, lang string) bool {
	l := strings.ToLower(strings.ReplaceAll(v.Lang, "_", "-"))
	return l == lang || strings.HasPrefix(l, lang+"-")
}

// SelectVoice prefers a female Indian-English voice, then any
// Indian-English voice, then any English voice, then the platform default.
func SelectVoice(voices []Voice) (Voice, bool) {
	preferences := []func(Voice) bool{
		func(v Voice) bool { return v.Female && langIs(v, "en-in") },
		func(v Voice) bool { return langIs(v, "en-in") },
		func(v Voice) bool { return langIs(v, "en") },
		func(v Voice) bool { return v.Default },
	}
	for _, pref := range preferences {
		for _, v := range voices {
			if pref(v) {
				return v, true
			}
		}
	}
	if len(voices) > 0 {
		return voices[0], true
	}
	return Voice{}, false
}

// NormalizeTranscript lowercases s, drops punctuation and collapses runs of
// whitespace.
func NormalizeTranscript(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchListing tries exact, then substring in either direction, then the
// same comparisons with spaces removed.
func MatchListing(transcript string, listings []Listing) (Listing, MatchMode) {
	q := NormalizeTranscript(transcript)
	if q == "" {
		return Listing{}, NoMatch
	}
	titles := make([]string, len(listings))
	for i, l := range listings {
		titles[i] = NormalizeTranscript(l.Title)
	}

	for i, t := range titles {
		if t == q {
			return listings[i], ExactMatch
		}
	}
	for i, t := range titles {
		if t != "" && (strings.Contains(t, q) || strings.Contains(q, t)) {
			return listings[i], SubstringMatch
		}
	}
	cq := strings.ReplaceAll(q, " ", "")
	for i, t := range titles {
		ct := strings.ReplaceAll(t, " ", "")
		if ct != "" && (ct == cq || strings.Contains(ct, cq) || strings.Contains(cq, ct)) {
			return listings[i], CompactMatch
		}
	}
	return Listing{}, NoMatch
}

// Narration is the spoken description of a listing.
func Narration(l Listing) string {
	var b strings.Builder
	b.WriteString(l.Title)
	b.WriteString(".")
	var specs []string
	if l.Beds > 0 {
		specs = append(specs, fmt.Sprintf("%d bedrooms", l.Beds))
	}
	if l.Baths > 0 {
		specs = append(specs, fmt.Sprintf("%d bathrooms", l.Baths))
	}
	if l.Area != "" {
		specs = append(specs, l.Area)
	}
	if len(specs) > 0 {
		b.WriteString(" " + strings.Join(specs, ", ") + ".")
	}
	if l.Address != "" {
		b.WriteString(" Located at " + l.Address + ".")
	}
	if l.PriceValue > 0 {
		b.WriteString(" Price " + PriceInWords(l.PriceValue) + ".")
	}
	return b.String()
}

type VoiceResult struct {
	Mode      MatchMode
	Listing   *Listing
	View      *DetailsView
	Narration string
}

// VoiceSearch runs a recognized transcript against the loaded listings.
// Without a narrator the search still opens details silently.
type VoiceSearch struct {
	narrator Narrator
	details  *Details
	notifier Notifier
	logger   *zap.Logger
}

func NewVoiceSearch(narrator Narrator, details *Details, notifier Notifier, logger *zap.Logger) *VoiceSearch {
	return &VoiceSearch{
		narrator: narrator,
		details:  details,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "voice")),
	}
}

func (v *VoiceSearch) speak(ctx context.Context, text string) {
	if v.narrator == nil {
		return
	}
	voice, ok := SelectVoice(v.narrator.Voices())
	if !ok {
		return
	}
	if err := v.narrator.Speak(ctx, text, voice); err != nil {
		v.logger.Info("speech synthesis failed", zap.Error(err))
	}
}

func (v *VoiceSearch) Search(ctx context.Context, transcript string, listings []Listing) VoiceResult {
	match, mode := MatchListing(transcript, listings)
	if mode == NoMatch {
		text := fmt.Sprintf("Sorry, no property matching %q was found.", NormalizeTranscript(transcript))
		v.speak(ctx, text)
		notify(v.notifier, LevelInfo, text)
		return VoiceResult{Mode: NoMatch, Narration: text}
	}

	v.logger.Debug("voice match", zap.String("transcript", transcript), zap.String("title", match.Title), zap.Stringer("mode", mode))
	text := Narration(match)
	v.speak(ctx, text)
	res := VoiceResult{Mode: mode, Listing: &match, Narration: text}
	if v.details != nil {
		view := v.details.ViewDetails(ctx, match)
		res.View = &view
	}
	return res
}
