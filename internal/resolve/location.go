package resolve

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/i474232898/weather-chat-assistant/internal/common"
	"github.com/i474232898/weather-chat-assistant/internal/completion"
	"github.com/i474232898/weather-chat-assistant/internal/locations"
)

// ErrLocationRequired is returned when no source yields a location. Callers
// surface it as a user-facing "please specify a location" failure.
var ErrLocationRequired = errors.New("location required")

// correctionLexicon flags messages where the user is overriding a previously
// stated location, across the supported languages (en, pt, es).
var correctionLexicon = []string{
	"actually", "instead", "wrong", "correct", "change",
	"na verdade", "errado", "errada", "troca", "troque", "muda", "mude", "corrig",
	"en realidad", "equivocado", "equivocada", "cambia", "cambie",
}

// SavedLocationLister is the slice of the saved-locations store the resolver
// needs.
type SavedLocationLister interface {
	ListUserLocations(ctx context.Context, userID string) ([]locations.SavedLocation, error)
}

// LocationResolver determines the place a query refers to, combining the
// current text, the conversation history and the user's saved locations.
type LocationResolver struct {
	completions completion.Gateway
	saved       SavedLocationLister
	strategies  []locationStrategy
}

type resolveInput struct {
	text       string
	mention    string
	correction bool
	history    []HistoryTurn
	saved      []locations.SavedLocation
}

// locationStrategy returns a result or nil; strategies run in priority order
// and the first non-nil result wins.
type locationStrategy func(ctx context.Context, in resolveInput) *Result

func NewLocationResolver(completions completion.Gateway, saved SavedLocationLister) *LocationResolver {
	r := &LocationResolver{
		completions: completions,
		saved:       saved,
	}
	r.strategies = []locationStrategy{
		r.correctionOverride,
		r.explicitMention,
		r.historyScan,
		r.activeDefault,
	}
	return r
}

// Resolve returns the location for the query, or ErrLocationRequired when no
// source yields one.
func (r *LocationResolver) Resolve(ctx context.Context, text, userID string, history []HistoryTurn) (Result, error) {
	in := resolveInput{
		text:       text,
		mention:    r.extract(ctx, text),
		correction: IsCorrection(text),
		history:    history,
	}

	if saved, err := r.saved.ListUserLocations(ctx, userID); err != nil {
		log.Printf("resolve: listing saved locations for %s failed: %v", userID, err)
	} else {
		in.saved = saved
	}

	for _, strategy := range r.strategies {
		if res := strategy(ctx, in); res != nil {
			return *res, nil
		}
	}

	return Result{}, ErrLocationRequired
}

// IsCorrection reports whether text carries a correction-intent keyword.
func IsCorrection(text string) bool {
	return common.HasAny(strings.ToLower(text), correctionLexicon...)
}

// correctionOverride short-circuits everything else: a correction signal plus
// a successful extraction wins immediately, regardless of history.
func (r *LocationResolver) correctionOverride(ctx context.Context, in resolveInput) *Result {
	if !in.correction || in.mention == "" {
		return nil
	}
	return &Result{Value: in.mention, Confidence: 0.9, Source: SourceExplicitText}
}

// explicitMention trusts a current-turn extraction, validating it against the
// user's saved locations first: an exact name match is preferred over the raw
// extraction, and an extraction the saved list cannot confirm is trusted at a
// reduced confidence.
func (r *LocationResolver) explicitMention(ctx context.Context, in resolveInput) *Result {
	if in.mention == "" {
		return nil
	}
	if name, ok := matchSaved(in.mention, in.saved); ok {
		return &Result{Value: name, Confidence: 0.9, Source: SourceSavedDefault}
	}
	if len(in.saved) > 0 {
		return &Result{Value: in.mention, Confidence: 0.7, Source: SourceExplicitText}
	}
	return &Result{Value: in.mention, Confidence: 0.9, Source: SourceExplicitText}
}

// historyScan walks prior turns from most recent to oldest and takes the
// first location mention found.
func (r *LocationResolver) historyScan(ctx context.Context, in resolveInput) *Result {
	for i := len(in.history) - 1; i >= 0; i-- {
		mention := r.extract(ctx, in.history[i].Message)
		if mention == "" {
			continue
		}
		if name, ok := matchSaved(mention, in.saved); ok {
			mention = name
		}
		return &Result{Value: mention, Confidence: 0.8, Source: SourceConversationHistory}
	}
	return nil
}

// activeDefault falls back to the saved location flagged as active.
func (r *LocationResolver) activeDefault(ctx context.Context, in resolveInput) *Result {
	for _, loc := range in.saved {
		if loc.IsActive {
			return &Result{Value: loc.Name, Confidence: 0.8, Source: SourceActiveDefault}
		}
	}
	return nil
}

// extract asks the completion gateway for the place name in text; "none" and
// gateway failures both come back as an empty mention.
func (r *LocationResolver) extract(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	answer, err := r.completions.Complete(ctx, completion.LocationExtractionPrompt(text))
	if err != nil {
		log.Printf("resolve: location extraction failed: %v", err)
		return ""
	}

	mention := strings.Trim(strings.TrimSpace(answer), `"'`)
	if mention == "" || strings.EqualFold(mention, "none") {
		return ""
	}
	return mention
}

func matchSaved(mention string, saved []locations.SavedLocation) (string, bool) {
	for _, loc := range saved {
		if strings.EqualFold(loc.Name, mention) {
			return loc.Name, true
		}
	}
	return "", false
}
