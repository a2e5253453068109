// Package match decides whether a child's spoken attempt at a word
// counts as correct despite noisy speech-to-text transcription and
// child mispronunciation.
//
// Matching is a decision ladder evaluated in order until one test
// succeeds:
//
//  1. Case-insensitive, whitespace-trimmed exact equality.
//  2. The target appears as a standalone token of the utterance
//     ("the word is cat").
//  3. Levenshtein distance between the full utterance and the target
//     is within a length-dependent tolerance.
//  4. Levenshtein distance between any individual token and the target
//     is within the same tolerance (recognizers append filler words).
//  5. Phonetic normalization brings the two strings together.
//
// Everything here is pure: same inputs, same verdict.
package match

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// Rule labels recorded on a Verdict for diagnostics.
const (
	RuleExact         = "exact"
	RuleToken         = "token"
	RuleDistance      = "distance"
	RuleTokenDistance = "token-distance"
	RulePhonetic      = "phonetic"
	RuleNone          = "none"
)

// Config holds the matcher's tolerance thresholds.
type Config struct {
	// ShortWordLen is the target length (in runes) at or below which
	// ShortWordTolerance applies instead of LongWordTolerance. Short
	// words get almost no slack: one edit can already flip a
	// three-letter word into a different word.
	ShortWordLen       int
	ShortWordTolerance int
	LongWordTolerance  int

	// PhoneticTolerance is the maximum Levenshtein distance allowed
	// between the phonetically normalized forms.
	PhoneticTolerance int
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		ShortWordLen:       3,
		ShortWordTolerance: 1,
		LongWordTolerance:  2,
		PhoneticTolerance:  1,
	}
}

// Verdict is the outcome of a match attempt. Rule names the ladder step
// that decided it and Distance holds the edit-distance evidence where
// one was computed. Both are diagnostic only.
type Verdict struct {
	IsMatch  bool
	Rule     string
	Distance int
}

// Matcher scores spoken transcripts against target words. A Matcher is
// read-only after construction and safe for concurrent use.
type Matcher struct {
	cfg  Config
	subs []substitution
}

// New returns a Matcher using cfg and the built-in phonetic
// substitution table.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg, subs: defaultSubstitutions()}
}

// Match reports whether spoken counts as an attempt at target.
//
// target must be a single non-empty word; an empty target is a
// validation error. An empty spoken transcript is a normal no-match,
// not an error.
func (m *Matcher) Match(spoken, target string) (Verdict, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return Verdict{Rule: RuleNone}, fmt.Errorf("match: target word is empty")
	}

	spoken = strings.ToLower(strings.TrimSpace(spoken))
	if spoken == "" {
		return Verdict{Rule: RuleNone}, nil
	}

	// 1. Exact equality.
	if spoken == target {
		return Verdict{IsMatch: true, Rule: RuleExact}, nil
	}

	// 2. Target as a standalone token of the utterance.
	tokens := strings.Fields(spoken)
	for _, tok := range tokens {
		if tok == target {
			return Verdict{IsMatch: true, Rule: RuleToken}, nil
		}
	}

	// 3. Edit distance over the full utterance.
	if d, ok := m.withinTolerance(spoken, target); ok {
		return Verdict{IsMatch: true, Rule: RuleDistance, Distance: d}, nil
	}

	// 4. Edit distance against each token.
	for _, tok := range tokens {
		if d, ok := m.withinTolerance(tok, target); ok {
			return Verdict{IsMatch: true, Rule: RuleTokenDistance, Distance: d}, nil
		}
	}

	// 5. Phonetic normalization. Only applies when the substitution
	// table actually rewrote one of the strings; otherwise there is no
	// phonetic evidence and the distance tests above already had the
	// final word.
	normSpoken := m.normalize(spoken)
	normTarget := m.normalize(target)
	if normSpoken != spoken || normTarget != target {
		if normSpoken == normTarget {
			return Verdict{IsMatch: true, Rule: RulePhonetic}, nil
		}
		if d := matchr.Levenshtein(normSpoken, normTarget); d <= m.cfg.PhoneticTolerance {
			return Verdict{IsMatch: true, Rule: RulePhonetic, Distance: d}, nil
		}
	}

	return Verdict{Rule: RuleNone}, nil
}

// withinTolerance reports whether s is within edit-distance tolerance
// of target. Short targets additionally require equal length: a single
// inserted or dropped letter on a three-letter word is usually a
// different word ("cat" vs "cast"), while a substitution ("cat" vs
// "cot") is a plausible mishearing.
func (m *Matcher) withinTolerance(s, target string) (int, bool) {
	d := matchr.Levenshtein(s, target)
	if d > m.tolerance(target) {
		return d, false
	}
	if len([]rune(target)) <= m.cfg.ShortWordLen && len([]rune(s)) != len([]rune(target)) {
		return d, false
	}
	return d, true
}

func (m *Matcher) tolerance(target string) int {
	if len([]rune(target)) <= m.cfg.ShortWordLen {
		return m.cfg.ShortWordTolerance
	}
	return m.cfg.LongWordTolerance
}
