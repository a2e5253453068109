package match

import "testing"

func TestMatch(t *testing.T) {
	m := New(DefaultConfig())

	tests := []struct {
		name     string
		spoken   string
		target   string
		want     bool
		wantRule string
	}{
		{
			name:     "exact match",
			spoken:   "cat",
			target:   "cat",
			want:     true,
			wantRule: RuleExact,
		},
		{
			name:     "case and whitespace insensitive",
			spoken:   "  CAT ",
			target:   "cat",
			want:     true,
			wantRule: RuleExact,
		},
		{
			name:     "target embedded in phrase",
			spoken:   "the word is cat",
			target:   "cat",
			want:     true,
			wantRule: RuleToken,
		},
		{
			name:     "short word single substitution",
			spoken:   "cot",
			target:   "cat",
			want:     true,
			wantRule: RuleDistance,
		},
		{
			name:     "short word other substitution",
			spoken:   "cut",
			target:   "cat",
			want:     true,
			wantRule: RuleDistance,
		},
		{
			name:   "short word with inserted letter is a different word",
			spoken: "cast",
			target: "cat",
			want:   false,
		},
		{
			name:   "unrelated short word",
			spoken: "dog",
			target: "cat",
			want:   false,
		},
		{
			name:     "long word two edits",
			spoken:   "elefant",
			target:   "elephant",
			want:     true,
			wantRule: RuleDistance,
		},
		{
			name:   "long word three edits",
			spoken: "alligator",
			target: "elephant",
			want:   false,
		},
		{
			name:     "token within filler words",
			spoken:   "a kat please",
			target:   "cat",
			want:     true,
			wantRule: RuleTokenDistance,
		},
		{
			name:     "phonetic ph to f",
			spoken:   "fone",
			target:   "phone",
			want:     true,
			wantRule: RulePhonetic,
		},
		{
			name:     "th fronting lands within edit tolerance",
			spoken:   "fumb",
			target:   "thumb",
			want:     true,
			wantRule: RuleDistance,
		},
		{
			name:     "phonetic qu and tion rewrites",
			spoken:   "kweschun",
			target:   "question",
			want:     true,
			wantRule: RulePhonetic,
		},
		{
			name:     "phonetic tion",
			spoken:   "stashun",
			target:   "station",
			want:     true,
			wantRule: RulePhonetic,
		},
		{
			name:     "doubled letters collapse",
			spoken:   "rabit",
			target:   "rabbit",
			want:     true,
			wantRule: RuleDistance,
		},
		{
			name:   "empty spoken never matches",
			spoken: "",
			target: "cat",
			want:   false,
		},
		{
			name:   "whitespace-only spoken never matches",
			spoken: "   ",
			target: "cat",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := m.Match(tt.spoken, tt.target)
			if err != nil {
				t.Fatalf("Match(%q, %q) returned error: %v", tt.spoken, tt.target, err)
			}
			if verdict.IsMatch != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v (rule %s)", tt.spoken, tt.target, verdict.IsMatch, tt.want, verdict.Rule)
			}
			if tt.want && tt.wantRule != "" && verdict.Rule != tt.wantRule {
				t.Errorf("Match(%q, %q) rule = %s, want %s", tt.spoken, tt.target, verdict.Rule, tt.wantRule)
			}
			if !tt.want && verdict.Rule != RuleNone {
				t.Errorf("Match(%q, %q) rule = %s, want %s", tt.spoken, tt.target, verdict.Rule, RuleNone)
			}
		})
	}
}

func TestMatchEmptyTarget(t *testing.T) {
	m := New(DefaultConfig())

	for _, target := range []string{"", "   "} {
		verdict, err := m.Match("cat", target)
		if err == nil {
			t.Errorf("Match(%q, %q) expected validation error, got verdict %+v", "cat", target, verdict)
		}
		if verdict.IsMatch {
			t.Errorf("Match(%q, %q) must not match on invalid input", "cat", target)
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	m := New(DefaultConfig())

	first, err := m.Match("stashun", "station")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := m.Match("stashun", "station")
		if err != nil {
			t.Fatalf("Match returned error: %v", err)
		}
		if again != first {
			t.Fatalf("Match is not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestNormalizeOrdering(t *testing.T) {
	m := New(DefaultConfig())

	tests := []struct {
		in   string
		want string
	}{
		// "tion" rewrites before any of its letters are touched by
		// later rules.
		{"station", "stashun"},
		{"phone", "fone"},
		{"which", "wich"},
		{"duck", "duk"},
		{"night", "nit"},
		{"rabbit", "rabit"},
		{"queen", "kwen"},
		{"city", "sity"},
	}

	for _, tt := range tests {
		if got := m.normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
