package language

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abadojack/whatlanggo"
)

// Detection runs over at most this many leading characters; the rest of the
// text adds cost without improving the guess.
const detectionWindow = 1000

// Text at or below this length is passed through untouched. Detecting a
// language on a handful of characters is noise.
const minDetectableChars = 10

const targetLang = "en"

type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Normalizer guarantees pipeline text is English: detect, and translate when
// the detected language is anything else.
type Normalizer struct {
	translator Translator
}

func NewNormalizer(t Translator) *Normalizer {
	return &Normalizer{translator: t}
}

func (n *Normalizer) Normalize(ctx context.Context, text string) (string, error) {
	if len(text) <= minDetectableChars {
		return text, nil
	}

	sample := text
	if len(sample) > detectionWindow {
		sample = sample[:detectionWindow]
	}

	info := whatlanggo.Detect(sample)
	if info.Lang == whatlanggo.Eng {
		return text, nil
	}

	slog.InfoContext(ctx, "non-english text detected, translating", "lang", info.Lang.String())

	translated, err := n.translator.Translate(ctx, text, targetLang)
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}
	return translated, nil
}
