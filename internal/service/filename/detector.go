package filename

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultExtensions расширения медиафайлов, распознаваемые по умолчанию.
var DefaultExtensions = []string{"jpg", "png", "mkv", "mov", "mp4", "webm"}

// Detector извлекает из текста упоминания медиафайлов.
type Detector interface {
	// Detect возвращает кандидатов в порядке появления. Без совпадений результат пустой.
	Detect(text string) []string
}

// RegexpDetector делит текст по пробелам и проверяет каждое слово регулярным выражением.
// Имя не должно содержать разделителей пути, расширение сравнивается с учётом регистра.
type RegexpDetector struct {
	re *regexp.Regexp
}

func NewRegexpDetector(extensions []string) (*RegexpDetector, error) {
	if len(extensions) == 0 {
		return nil, fmt.Errorf("no attachment extensions configured")
	}
	quoted := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			return nil, fmt.Errorf("empty attachment extension in %q", extensions)
		}
		quoted = append(quoted, regexp.QuoteMeta(ext))
	}
	re, err := regexp.Compile(`^[^\s/\\]+\.(` + strings.Join(quoted, "|") + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile filename pattern: %w", err)
	}
	return &RegexpDetector{re: re}, nil
}

// trimToken снимает кавычки, скобки и завершающие знаки препинания вокруг слова.
func trimToken(tok string) string {
	tok = strings.TrimLeft(tok, "\"'`([{<«")
	return strings.TrimRight(tok, "\"'`)]}>»,;:!?.")
}

func (d *RegexpDetector) Detect(text string) []string {
	var out []string
	for _, tok := range strings.Fields(text) {
		tok = trimToken(tok)
		if d.re.MatchString(tok) {
			out = append(out, tok)
		}
	}
	return out
}
