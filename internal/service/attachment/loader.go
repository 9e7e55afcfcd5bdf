package attachment

import (
	"GeminiClient/internal/ai"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNotFound файл не существует, не открывается или является каталогом.
	ErrNotFound = errors.New("attachment not found")
	// ErrIO любая другая ошибка чтения, включая превышение лимита размера.
	ErrIO = errors.New("attachment read failed")
)

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// MimeType определяет тип содержимого по расширению имени файла.
func MimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		return mt
	}
	return "application/octet-stream"
}

// Loader читает вложения из рабочего каталога. Ничего не кэширует: каждый вызов читает файл заново.
type Loader struct {
	maxBytes int64
	logger   *zap.SugaredLogger
}

// NewLoader maxBytes <= 0 снимает ограничение на размер.
func NewLoader(maxBytes int64, logger *zap.SugaredLogger) *Loader {
	return &Loader{maxBytes: maxBytes, logger: logger}
}

func (l *Loader) Load(folder, filename string) (ai.Attachment, error) {
	path := filepath.Join(folder, filename)

	f, err := os.Open(path)
	if err != nil {
		return ai.Attachment{}, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ai.Attachment{}, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if info.IsDir() {
		return ai.Attachment{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return ai.Attachment{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrIO, path, info.Size(), l.maxBytes)
	}

	var r io.Reader = f
	if l.maxBytes > 0 {
		// файл мог вырасти после Stat
		r = io.LimitReader(f, l.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ai.Attachment{}, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if len(data) == 0 {
		return ai.Attachment{}, fmt.Errorf("%w: %s is empty", ErrIO, path)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return ai.Attachment{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrIO, path, l.maxBytes)
	}

	att := ai.Attachment{
		Path:     path,
		Name:     filename,
		MIMEType: MimeType(filename),
		Data:     data,
	}
	l.logger.Debugw("Attachment loaded", "path", path, "bytes", len(data), "mime", att.MIMEType)
	return att, nil
}
