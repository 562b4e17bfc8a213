package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/admir900-maker/ticket-gate/internal/app"
)

// Uploaded scan photos top out well under this; anything larger is not a
// QR snapshot.
const maxImageBytes = 8 << 20

// HandleValidateImage returns the handler for POST /validate/image. The
// body is either a raw image or a multipart form with an "image" part.
func HandleValidateImage(svc TicketValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		data, err := readImageBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid image upload")
			return
		}

		res, err := svc.Validate(r.Context(), app.ValidateInput{
			ImageData:     data,
			ValidatorID:   r.Header.Get(validatorIDHeader),
			ValidatorRole: r.Header.Get(validatorRoleHeader),
			Location:      r.Header.Get(scanLocationHeader),
			DeviceInfo:    r.Header.Get(deviceInfoHeader),
		})
		writeValidateResult(w, res, err)
	}
}

func readImageBody(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxImageBytes))
	}
	return io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
}
