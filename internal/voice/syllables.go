package voice

import (
	"strings"
	"unicode"
)

// CountSyllables estimates the syllables in word from runs of vowels
// (a, e, i, o, u, y). A trailing silent "e" is not counted when there is
// more than one run, and every word has at least one syllable. Case and
// punctuation are ignored.
func CountSyllables(word string) int {
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)

	count := 0
	inVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !inVowel {
			count++
		}
		inVowel = v
	}

	if count > 1 && strings.HasSuffix(letters, "e") {
		count--
	}
	return max(count, 1)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
