package submit

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"

	"github.com/kyaw-zaya123/checking/internal/models"
	"github.com/kyaw-zaya123/checking/internal/validation"
)

// CapturePayload snapshots the selected files into a multipart/form-data
// body. Every file is a part named fieldName; empty slots are skipped.
// File contents are read now, so later changes on disk do not affect an
// attempt that is already under way.
func CapturePayload(slots []models.Slot, fieldName string) (*models.Payload, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	payload := &models.Payload{}

	for _, slot := range slots {
		if !slot.HasFile() {
			continue
		}
		f := slot.File

		if err := validation.ValidateFilename(f.Name); err != nil {
			return nil, fmt.Errorf("slot %d: %w", slot.Index, err)
		}

		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("slot %d: failed to read %s: %w", slot.Index, f.Name, err)
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(fieldName), escapeQuotes(f.Name)))
		h.Set("Content-Type", contentTypeFor(f.Extension()))

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("slot %d: failed to create part: %w", slot.Index, err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("slot %d: failed to write part: %w", slot.Index, err)
		}

		payload.Files = append(payload.Files, models.PayloadFile{
			Slot: slot.Index,
			Name: f.Name,
			Size: int64(len(data)),
		})
	}

	if len(payload.Files) == 0 {
		return nil, fmt.Errorf("no files selected")
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	payload.ContentType = w.FormDataContentType()
	payload.Body = body.Bytes()
	return payload, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
