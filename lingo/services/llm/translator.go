package llm

import (
	"context"
	"errors"
	"fmt"

	"lingo/lingo/utils/logging"
	"lingo/lingo/utils/textutils"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

var ErrEmptyTranslation = errors.New("model returned an empty translation")

// Cache stores finished translations keyed by target language and source text.
type Cache interface {
	GetTranslation(ctx context.Context, targetLang, text string) (string, error)
	PutTranslation(ctx context.Context, targetLang, text, translated string) error
}

type Translator struct {
	model llms.Model
	cache Cache
}

// NewTranslator wraps model. cache may be nil.
func NewTranslator(model llms.Model, cache Cache) *Translator {
	return &Translator{model: model, cache: cache}
}

func translationPrompt(text, targetLang string) string {
	return fmt.Sprintf(
		"Translate the following sentence to %s. Do not include any explanation or formatting. Only return the translated sentence as plain text:\n\n%s",
		targetLang, text,
	)
}

func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	defer logging.LogDuration(ctx, "llm_translate")()

	if t.cache != nil {
		cached, err := t.cache.GetTranslation(ctx, targetLang, text)
		if err == nil && cached != "" {
			return cached, nil
		}
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, t.model, translationPrompt(text, targetLang))
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	translated := textutils.CleanModelOutput(out)
	if translated == "" {
		return "", ErrEmptyTranslation
	}

	if t.cache != nil {
		if err := t.cache.PutTranslation(ctx, targetLang, text, translated); err != nil {
			logging.ErrorLogger.Warn("translation cache write failed",
				zap.String("target_lang", targetLang),
				zap.Error(err),
			)
		}
	}
	return translated, nil
}
