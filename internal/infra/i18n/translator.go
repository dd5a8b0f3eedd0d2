package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	translations map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T translates a key, formatting args into it. Unknown keys echo back the
// key so a missing translation is visible, not fatal.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle holds one Translator per supported language and falls back to the
// default language for anything unknown.
type Bundle struct {
	translators map[string]*Translator
	fallback    string
}

func NewBundle(fsys fs.FS, fallback string, langs ...string) (*Bundle, error) {
	b := &Bundle{translators: make(map[string]*Translator), fallback: fallback}
	for _, lang := range append([]string{fallback}, langs...) {
		if _, ok := b.translators[lang]; ok {
			continue
		}
		tr, err := NewTranslator(fsys, lang)
		if err != nil {
			return nil, err
		}
		b.translators[lang] = tr
	}
	return b, nil
}

func (b *Bundle) ForLang(lang string) *Translator {
	if tr, ok := b.translators[lang]; ok {
		return tr
	}
	return b.translators[b.fallback]
}

// Langs lists the languages the bundle was built with.
func (b *Bundle) Langs() []string {
	out := make([]string, 0, len(b.translators))
	for lang := range b.translators {
		out = append(out, lang)
	}
	return out
}
