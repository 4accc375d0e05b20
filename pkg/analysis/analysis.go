// Package analysis derives recall metadata from raw memory content.
//
// Analysis happens once at store time: keywords, emotion tags and belief
// tags are extracted and persisted with the memory so that recall strategies
// can match on them without re-reading the content.
package analysis

import (
	"strings"
	"unicode"
)

const maxKeywords = 10

// Emotion labels assigned by DetectEmotions.
const (
	EmotionJoy      = "joy"
	EmotionSadness  = "sadness"
	EmotionAnger    = "anger"
	EmotionSurprise = "surprise"
	EmotionFear     = "fear"
	EmotionDisgust  = "disgust"
)

// emotionLexicon maps emotion labels to trigger words. Matching is
// substring-based on the lowercased content, so "happiness" triggers joy
// via "happ".
var emotionLexicon = map[string][]string{
	EmotionJoy:      {"happ", "joy", "glad", "delight", "excit", "pleased", "satisf", "love"},
	EmotionSadness:  {"sad", "depress", "tears", "cry", "grief", "misera", "hopeless", "lonely"},
	EmotionAnger:    {"angry", "anger", "furious", "annoyed", "irritat", "rage", "mad at"},
	EmotionSurprise: {"surpris", "astonish", "amazed", "unexpected", "wow", "startl"},
	EmotionFear:     {"afraid", "scared", "anxious", "worri", "fear", "nervous", "dread"},
	EmotionDisgust:  {"disgust", "gross", "revolting", "hate", "awful", "nasty"},
}

// emotionOrder fixes the output order of detected emotions.
var emotionOrder = []string{
	EmotionJoy, EmotionSadness, EmotionAnger,
	EmotionSurprise, EmotionFear, EmotionDisgust,
}

// beliefIndicators are phrases that mark a statement of conviction or value.
var beliefIndicators = []string{
	"i believe", "i think", "i'm convinced", "i am convinced", "in my opinion",
	"my principle", "my philosophy", "it is important", "it's important",
	"matters to me", "i value", "always", "never",
}

// Tokenize splits content into lowercase alphanumeric tokens. Runs of
// letters and digits form tokens; everything else is a separator.
func Tokenize(content string) []string {
	return strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractKeywords returns up to ten distinct lowercase tokens of at least
// two characters, in order of first appearance.
func ExtractKeywords(content string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range Tokenize(content) {
		if len(token) < 2 || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
		if len(keywords) >= maxKeywords {
			break
		}
	}
	return keywords
}

// DetectEmotions returns the emotion labels whose trigger words appear in
// the content. The output order is fixed so results are deterministic.
func DetectEmotions(content string) []string {
	lower := strings.ToLower(content)
	var detected []string
	for _, emotion := range emotionOrder {
		for _, trigger := range emotionLexicon[emotion] {
			if strings.Contains(lower, trigger) {
				detected = append(detected, emotion)
				break
			}
		}
	}
	return detected
}

// DetectBeliefs returns the belief indicator phrases found in the content.
func DetectBeliefs(content string) []string {
	lower := strings.ToLower(content)
	var detected []string
	for _, indicator := range beliefIndicators {
		if strings.Contains(lower, indicator) {
			detected = append(detected, indicator)
		}
	}
	return detected
}

// synonyms maps a token to related tokens used for association expansion.
// The table is small and curated; association recall only needs enough
// spread to surface adjacent topics, not a full thesaurus.
var synonyms = map[string][]string{
	"happy":    {"glad", "joyful", "cheerful"},
	"sad":      {"unhappy", "down", "blue"},
	"angry":    {"mad", "furious", "upset"},
	"work":     {"job", "office", "career"},
	"home":     {"house", "apartment", "family"},
	"food":     {"meal", "dinner", "lunch", "eat"},
	"friend":   {"buddy", "companion", "pal"},
	"study":    {"learn", "school", "read"},
	"money":    {"cash", "salary", "budget"},
	"travel":   {"trip", "journey", "vacation"},
	"code":     {"program", "software", "develop"},
	"language": {"python", "go", "grammar", "speech"},
	"sick":     {"ill", "unwell", "pain"},
	"sleep":    {"rest", "nap", "tired"},
	"music":    {"song", "melody", "concert"},
}

// ExpandTokens returns the input tokens plus their synonyms, deduplicated,
// preserving first-appearance order.
func ExpandTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var expanded []string
	add := func(token string) {
		if token == "" || seen[token] {
			return
		}
		seen[token] = true
		expanded = append(expanded, token)
	}
	for _, token := range tokens {
		add(token)
		for _, syn := range synonyms[token] {
			add(syn)
		}
	}
	return expanded
}
