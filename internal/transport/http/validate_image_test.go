package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleValidateImage(t *testing.T) {
	t.Run("raw body is passed through as image data", func(t *testing.T) {
		svc := &fakeValidator{}
		handler := HandleValidateImage(svc)

		req := httptest.NewRequest(http.MethodPost, "/validate/image", bytes.NewReader([]byte{0x89, 0x50, 0x4e, 0x47}))
		req.Header.Set("Content-Type", "image/png")
		req.Header.Set(validatorIDHeader, "val-1")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if !bytes.Equal(svc.gotInput.ImageData, []byte{0x89, 0x50, 0x4e, 0x47}) {
			t.Fatalf("unexpected image data: %v", svc.gotInput.ImageData)
		}
		if svc.gotInput.QRCodeData != "" {
			t.Fatalf("expected empty text payload, got %q", svc.gotInput.QRCodeData)
		}
		if svc.gotInput.ValidatorID != "val-1" {
			t.Fatalf("expected validator header to pass through, got %q", svc.gotInput.ValidatorID)
		}
	})

	t.Run("multipart image part is extracted", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("image", "scan.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}

		svc := &fakeValidator{}
		handler := HandleValidateImage(svc)

		req := httptest.NewRequest(http.MethodPost, "/validate/image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler(rec, req)

		if string(svc.gotInput.ImageData) != "image-bytes" {
			t.Fatalf("unexpected image data: %q", svc.gotInput.ImageData)
		}
	})

	t.Run("multipart without an image part is rejected", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if err := mw.WriteField("note", "no image here"); err != nil {
			t.Fatalf("write field: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}

		handler := HandleValidateImage(&fakeValidator{})

		req := httptest.NewRequest(http.MethodPost, "/validate/image", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		handler := HandleValidateImage(&fakeValidator{})

		req := httptest.NewRequest(http.MethodGet, "/validate/image", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}
