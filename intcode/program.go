package intcode

import (
	"fmt"
	"strings"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Parse decodes comma-separated signed decimal program text into a memory image.
// Whitespace around tokens and a single trailing comma are tolerated.
func Parse(text string) ([]Word, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ",")
	if text == "" {
		return nil, fmt.Errorf("empty program: %w", vmerrors.ErrMalformedProgram)
	}

	tokens := strings.Split(text, ",")
	image := make([]Word, len(tokens))
	for i, tok := range tokens {
		w, err := ParseWord(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("token %d %q %v: %w", i, tok, err, vmerrors.ErrMalformedProgram)
		}
		image[i] = w
	}
	return image, nil
}

// MustParse is Parse for program literals known to be valid; it panics otherwise.
func MustParse(text string) []Word {
	image, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return image
}

// Format renders an image or output sequence back into program text.
func Format(values []Word) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.String())
	}
	return b.String()
}
