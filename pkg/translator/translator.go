package translator

import (
	"embed"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed translation/*.toml
var translations embed.FS

var Translator *i18n.Bundle

const (
	LanguageEn = "en"
	LanguagePt = "pt"
)

var SupportedLanguages = []string{LanguageEn, LanguagePt}

// InitTranslator loads the embedded translation files into Translator.
func InitTranslator() {
	Translator = NewBundle(translations, "translation")
}

// NewBundle builds a bundle from every .toml file under dir in fsys.
func NewBundle(fsys fs.FS, dir string) *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(fsys, dir+"/*.toml")
	if err != nil {
		zap.L().Error("failed to list translation files", zap.String("folder", dir), zap.Error(err))
		return bundle
	}

	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(fsys, f); err != nil {
			zap.L().Warn("failed to load translation file", zap.String("file", f), zap.Error(err))
		}
	}

	return bundle
}

// Localize returns the message for id in lang, falling back to English and
// then to the id itself.
func Localize(id, lang string) string {
	if Translator == nil {
		return id
	}

	l := i18n.NewLocalizer(Translator, lang, LanguageEn)
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		zap.L().Warn("translation not found", zap.String("lang", lang), zap.String("message_id", id), zap.Error(err))
		return id
	}
	return msg
}
