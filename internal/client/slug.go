package client

import (
	"strings"
	"unicode"
)

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Slugify builds ids from Russian names: lower case, Cyrillic transliterated, letters
// and digits kept, spaces, dashes and underscores turned into single dashes.
func Slugify(text string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		if latin, ok := translit[r]; ok {
			sb.WriteString(latin)
			continue
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteByte('-')
		}
	}

	parts := strings.FieldsFunc(sb.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}
