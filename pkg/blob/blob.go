// Package blob converts base64 data URLs into typed binary payloads.
package blob

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Blob is a byte payload tagged with a MIME type.
type Blob struct {
	Type string
	Data []byte
}

// FromDataURL decodes the base64 payload after the first comma of data and
// tags it with mime. Input without a comma is decoded whole.
// Malformed base64 returns the decoder's error unchanged.
func FromDataURL(data, mime string) (*Blob, error) {
	payload := data
	if i := strings.IndexByte(data, ','); i >= 0 {
		payload = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return &Blob{Type: mime, Data: raw}, nil
}

// MIMEOf returns the media type declared in a data URL header, such as
// "image/png" for "data:image/png;base64,...". It returns "" when the
// header declares none.
func MIMEOf(data string) string {
	header, _, ok := strings.Cut(data, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return ""
	}
	mime, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	return mime
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// WriteTo writes the payload to w.
func (b *Blob) WriteTo(w io.Writer) (int64, error) {
	if b == nil {
		return 0, nil
	}
	n, err := io.Copy(w, bytes.NewReader(b.Data))
	if err != nil {
		return n, fmt.Errorf("failed to write %s blob: %w", b.Type, err)
	}
	return n, nil
}
