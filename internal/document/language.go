package document

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language ids understood by wingman.
const (
	LanguagePython = "python"
	LanguageR      = "r"
	LanguageQuarto = "quarto"
)

// DetectLanguage returns the language id for a file, using its name first
// and its content when the extension is ambiguous. Unknown languages are
// returned lower-cased as go-enry reports them.
func DetectLanguage(path string, content []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qmd", ".rmd":
		return LanguageQuarto
	case ".r":
		// linguist also claims .r for Rebol
		return LanguageR
	}

	lang := enry.GetLanguage(filepath.Base(path), content)
	return NormalizeLanguage(lang)
}

// NormalizeLanguage maps a linguist language name to a wingman language id.
func NormalizeLanguage(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "python", "py", "python3":
		return LanguagePython
	case "r", "rscript":
		return LanguageR
	case "quarto", "qmd":
		return LanguageQuarto
	default:
		return strings.ToLower(name)
	}
}
