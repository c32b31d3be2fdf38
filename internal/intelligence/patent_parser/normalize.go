package patent_parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// fold applies NFKC so that full-width punctuation, digits and Latin letters
// compare equal to their ASCII forms.
func fold(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// normalize folds s and drops whitespace and the joiners that appear inside
// transliterated names. "马-里兰大学" becomes "马里兰大学".
func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || isJoiner(r) {
			return -1
		}
		return r
	}, fold(s))
}

func isJoiner(r rune) bool {
	switch r {
	case '-', '‐', '‑', '–', '—', '·', '•', '‧', '・', '_':
		return true
	}
	return false
}

// stripPostalCode removes a leading six-digit postal code.
func stripPostalCode(s string) (rest, code string) {
	if len(s) < 6 {
		return s, ""
	}
	for i := 0; i < 6; i++ {
		if s[i] < '0' || s[i] > '9' {
			return s, ""
		}
	}
	if len(s) > 6 && s[6] >= '0' && s[6] <= '9' {
		return s, ""
	}
	return s[6:], s[:6]
}

// foreignStyle reports whether a folded name looks non-domestic: Latin or
// kana script, middle-dot transliteration, or a Japanese/Korean company form.
func foreignStyle(folded string) bool {
	for _, m := range foreignForms {
		if strings.Contains(folded, m) {
			return true
		}
	}
	for _, r := range folded {
		switch {
		case r < utf8.RuneSelf && unicode.IsLetter(r):
			return true
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			return true
		case r == '·' || r == '•' || r == '・':
			return true
		}
	}
	return false
}

var foreignForms = []string{"(株)", "株式会社", "有限会社", "合同会社"}

func isHan(r rune) bool { return unicode.Is(unicode.Han, r) }

func allHan(s string) bool {
	for _, r := range s {
		if !isHan(r) {
			return false
		}
	}
	return s != ""
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
