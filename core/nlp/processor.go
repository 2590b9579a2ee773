// Package nlp implements the deterministic keyword-extraction path used
// when the LLM enhancement service is disabled or unconfigured. It
// tokenizes free text, strips stop words, classifies tokens into
// mood/genre/instrument buckets and assembles an optimized search query.
package nlp

import (
	"sort"
	"strings"
	"unicode"

	"tunescout/logger"
	"tunescout/model"
)

// moodEntry keeps mood classification ordered: the first matching mood
// wins, so table order is load-bearing.
type moodEntry struct {
	mood     string
	keywords []string
}

var moodTable = []moodEntry{
	{"happy", []string{"happy", "joyful", "cheerful", "upbeat", "positive", "bright", "sunny"}},
	{"sad", []string{"sad", "melancholy", "depressing", "somber", "emotional", "crying", "heartbreak", "breakup"}},
	{"energetic", []string{"energetic", "intense", "powerful", "aggressive", "hype", "pumped", "extreme"}},
	{"calm", []string{"calm", "relaxing", "chill", "peaceful", "ambient", "tranquil", "soothing", "meditation"}},
	{"workout", []string{"workout", "gym", "running", "exercise", "fitness", "training", "cardio"}},
	{"party", []string{"party", "dance", "club", "edm", "electronic", "rave", "festival"}},
	{"focus", []string{"focus", "study", "studying", "concentration", "instrumental", "classical", "work", "reading"}},
	{"romantic", []string{"romantic", "love", "date", "valentine", "romance"}},
	{"sleep", []string{"sleep", "bedtime", "night", "lullaby", "sleepy"}},
}

var genreKeywords = map[string]struct{}{
	"pop": {}, "rock": {}, "jazz": {}, "classical": {}, "hip-hop": {}, "rap": {},
	"country": {}, "metal": {}, "blues": {}, "reggae": {}, "soul": {}, "funk": {},
	"disco": {}, "techno": {}, "house": {}, "trance": {}, "dubstep": {}, "indie": {},
	"folk": {}, "punk": {}, "grunge": {}, "alternative": {}, "r&b": {}, "rnb": {},
	"edm": {}, "electronic": {}, "acoustic": {}, "instrumental": {}, "ambient": {}, "lofi": {},
}

var instrumentKeywords = map[string]struct{}{
	"piano": {}, "guitar": {}, "violin": {}, "drums": {}, "bass": {}, "saxophone": {},
	"trumpet": {}, "flute": {}, "cello": {}, "acoustic": {}, "electric": {},
	"synthesizer": {}, "synth": {},
}

var stopWords = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "myself": {}, "we": {}, "our": {}, "ours": {},
	"ourselves": {}, "you": {}, "your": {}, "yours": {}, "yourself": {},
	"yourselves": {}, "he": {}, "him": {}, "his": {}, "himself": {}, "she": {},
	"her": {}, "hers": {}, "herself": {}, "it": {}, "its": {}, "itself": {},
	"they": {}, "them": {}, "their": {}, "theirs": {}, "themselves": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "am": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "having": {}, "do": {}, "does": {}, "did": {}, "doing": {},
	"a": {}, "an": {}, "the": {}, "and": {}, "but": {}, "if": {}, "or": {},
	"because": {}, "as": {}, "until": {}, "while": {}, "of": {}, "at": {},
	"by": {}, "for": {}, "with": {}, "about": {}, "against": {}, "between": {},
	"into": {}, "through": {}, "during": {}, "before": {}, "after": {},
	"above": {}, "below": {}, "to": {}, "from": {}, "up": {}, "down": {},
	"in": {}, "out": {}, "on": {}, "off": {}, "over": {}, "under": {},
	"again": {}, "further": {}, "then": {}, "once": {}, "here": {},
	"there": {}, "when": {}, "where": {}, "why": {}, "how": {}, "all": {},
	"both": {}, "each": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "no": {}, "nor": {}, "not": {}, "only": {},
	"own": {}, "same": {}, "so": {}, "than": {}, "too": {}, "very": {},
	"s": {}, "t": {}, "can": {}, "will": {}, "just": {}, "don": {},
	"should": {}, "now": {}, "want": {}, "need": {}, "like": {}, "feel": {},
	"something": {}, "anything": {}, "music": {}, "song": {}, "songs": {},
	"track": {}, "tracks": {}, "listen": {}, "listening": {}, "find": {},
	"play": {}, "playing": {}, "get": {}, "give": {},
}

// Keywords holds the classified extraction result for one input text.
type Keywords struct {
	Moods         []string
	Genres        []string
	Instruments   []string
	OtherKeywords []string
	AllKeywords   []string
}

// Processor is a stateless keyword extractor.
type Processor struct{}

// NewProcessor constructs a Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// tokenize lowercases and splits on any non-alphanumeric rune, keeping
// characters that matter for genre labels such as "r&b" and "hip-hop".
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		return r != '&' && r != '-'
	})
}

// ExtractKeywords runs the full extraction over the input text.
func (p *Processor) ExtractKeywords(text string) Keywords {
	tokens := tokenize(text)

	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := stopWords[token]; stop {
			continue
		}
		if len(token) < 2 {
			continue
		}
		filtered = append(filtered, token)
	}

	moods := p.ExtractMoods(text)
	genres := filterByTable(filtered, genreKeywords)
	instruments := filterByTable(filtered, instrumentKeywords)

	classified := make(map[string]struct{})
	for _, w := range moods {
		classified[w] = struct{}{}
	}
	for _, w := range genres {
		classified[w] = struct{}{}
	}
	for _, w := range instruments {
		classified[w] = struct{}{}
	}

	var leftovers []string
	for _, token := range filtered {
		if _, ok := classified[token]; !ok {
			leftovers = append(leftovers, token)
		}
	}

	sortedOther := rankByFrequency(leftovers)
	if len(sortedOther) > 5 {
		sortedOther = sortedOther[:5]
	}

	all := make([]string, 0, len(moods)+len(genres)+len(instruments)+3)
	all = append(all, moods...)
	all = append(all, genres...)
	all = append(all, instruments...)
	topOther := sortedOther
	if len(topOther) > 3 {
		topOther = topOther[:3]
	}
	all = append(all, topOther...)

	result := Keywords{
		Moods:         moods,
		Genres:        genres,
		Instruments:   instruments,
		OtherKeywords: sortedOther,
		AllKeywords:   all,
	}

	logger.Debug("nlp keyword extraction",
		logger.String("text", text),
		logger.Any("keywords", result))

	return result
}

// BuildSearchQuery assembles an optimized catalog query from extracted
// keywords: genres and instruments first, then moods, then the most
// frequent leftover tokens (artist names usually live there).
func (p *Processor) BuildSearchQuery(keywords Keywords) string {
	var parts []string

	parts = append(parts, keywords.Genres...)
	parts = append(parts, keywords.Instruments...)
	parts = append(parts, keywords.Moods...)

	other := keywords.OtherKeywords
	if len(other) > 4 {
		other = other[:4]
	}
	parts = append(parts, other...)

	if len(parts) == 0 {
		return "popular music"
	}

	return strings.Join(parts, " ")
}

// ExtractMoods returns every mood whose keyword list has a substring
// match in the text, in table order.
func (p *Processor) ExtractMoods(text string) []string {
	lower := strings.ToLower(text)
	var detected []string

	for _, entry := range moodTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				detected = append(detected, entry.mood)
				break
			}
		}
	}

	return detected
}

// ConvertToSearchQuery is the one-shot helper: extract then build.
func (p *Processor) ConvertToSearchQuery(text string) string {
	return p.BuildSearchQuery(p.ExtractKeywords(text))
}

// SuggestAudioFeatures maps a mood to representative slider values.
func (p *Processor) SuggestAudioFeatures(mood string) model.AudioFeatures {
	featureMap := map[string]model.AudioFeatures{
		"happy":     {Energy: 0.7, Valence: 0.8, Danceability: 0.7, Tempo: 120},
		"sad":       {Energy: 0.3, Valence: 0.2, Danceability: 0.4, Tempo: 80},
		"energetic": {Energy: 0.9, Valence: 0.6, Danceability: 0.8, Tempo: 140},
		"calm":      {Energy: 0.2, Valence: 0.5, Danceability: 0.3, Tempo: 70},
		"workout":   {Energy: 0.9, Valence: 0.7, Danceability: 0.9, Tempo: 130},
		"party":     {Energy: 0.8, Valence: 0.7, Danceability: 0.9, Tempo: 125},
		"focus":     {Energy: 0.3, Valence: 0.5, Danceability: 0.2, Tempo: 90},
		"romantic":  {Energy: 0.4, Valence: 0.6, Danceability: 0.5, Tempo: 85},
		"sleep":     {Energy: 0.1, Valence: 0.4, Danceability: 0.1, Tempo: 60},
	}

	if features, ok := featureMap[mood]; ok {
		return features
	}
	return model.AudioFeatures{Energy: 0.5, Valence: 0.5, Danceability: 0.5, Tempo: 100}
}

func filterByTable(tokens []string, table map[string]struct{}) []string {
	var matched []string
	for _, token := range tokens {
		if _, ok := table[token]; ok {
			matched = append(matched, token)
		}
	}
	return matched
}

// rankByFrequency sorts tokens by in-request frequency, most frequent
// first. Ties keep first-seen order so the output stays deterministic.
func rankByFrequency(tokens []string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var unique []string

	for i, token := range tokens {
		if counts[token] == 0 {
			firstSeen[token] = i
			unique = append(unique, token)
		}
		counts[token]++
	}

	sort.SliceStable(unique, func(a, b int) bool {
		if counts[unique[a]] != counts[unique[b]] {
			return counts[unique[a]] > counts[unique[b]]
		}
		return firstSeen[unique[a]] < firstSeen[unique[b]]
	})

	return unique
}
