package ai

import (
	"encoding/base64"
	"fmt"
)

// Attachment бинарное вложение, отправляемое вместе с текстом.
type Attachment struct {
	Path     string
	Name     string
	MIMEType string
	Data     []byte
}

// Base64 кодирует содержимое для передачи.
func (a Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURL возвращает содержимое в виде data URL.
func (a Attachment) DataURL() string {
	contentType := a.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, a.Base64())
}

// DecodeBase64 обратное преобразование к Base64.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
