package transcriber

import (
	"unicode"

	"livecap/linegen"
)

// maxPiece is the longest word emitted as one token; longer words are cut
// into pieceLen-rune sub-word tokens the way recognizers emit them.
const (
	maxPiece = 6
	pieceLen = 4
)

// Tokenize splits plain text into recognizer-style tokens: each word starts
// with a space and carries WordBoundary, apostrophe suffixes and long-word
// remainders follow as bare pieces, and terminal punctuation is its own
// SentenceEnd token.
func Tokenize(text string) []linegen.Token {
	var tokens []linegen.Token
	var word []rune

	flush := func() {
		if len(word) == 0 {
			return
		}
		first := true
		for _, part := range splitApostrophes(word) {
			for _, p := range chunk(part) {
				if first {
					tokens = append(tokens, linegen.Token{Text: " " + string(p), Flags: linegen.WordBoundary})
					first = false
				} else {
					tokens = append(tokens, linegen.Token{Text: string(p)})
				}
			}
		}
		word = word[:0]
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '’':
			word = append(word, r)
		case unicode.IsSpace(r):
			flush()
		case r == '.' || r == '!' || r == '?':
			flush()
			tokens = append(tokens, linegen.Token{Text: string(r), Flags: linegen.SentenceEnd})
		default:
			flush()
			tokens = append(tokens, linegen.Token{Text: string(r)})
		}
	}
	flush()
	return tokens
}

func splitApostrophes(word []rune) [][]rune {
	var parts [][]rune
	start := 0
	for i, r := range word {
		if (r == '\'' || r == '’') && i > 0 {
			parts = append(parts, word[start:i])
			start = i
		}
	}
	return append(parts, word[start:])
}

func chunk(part []rune) [][]rune {
	if len(part) <= maxPiece {
		return [][]rune{part}
	}
	var out [][]rune
	for len(part) > pieceLen {
		out = append(out, part[:pieceLen])
		part = part[pieceLen:]
	}
	return append(out, part)
}
