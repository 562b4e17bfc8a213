package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// SettingsEditor is the minimal interface for the settings endpoints.
type SettingsEditor interface {
	Current(ctx context.Context) (domain.ValidationPolicy, error)
	Update(ctx context.Context, pol domain.ValidationPolicy) error
}

// HandleAdminSettings returns the handler for /admin/settings. PUT
// replaces the stored document wholesale; resolvers pick the change up
// at their next snapshot expiry.
func HandleAdminSettings(svc SettingsEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			pol, err := svc.Current(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(newPolicyDocument(pol))
			return
		case http.MethodPut:
			var doc policyDocument
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&doc); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			if err := svc.Update(r.Context(), doc.toPolicy()); err != nil {
				switch err {
				case domain.ErrInvalidPolicy:
					writeError(w, http.StatusBadRequest, codeInvalidPolicy, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			w.WriteHeader(http.StatusNoContent)
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

type policyDocument struct {
	QRCodeEnabled           bool     `json:"qrCodeEnabled"`
	ScannerEnabled          bool     `json:"scannerEnabled"`
	MultipleScansAllowed    bool     `json:"multipleScansAllowed"`
	ScanTimeWindowDays      int      `json:"scanTimeWindowDays"`
	ValidationStartDays     int      `json:"validationStartDays"`
	AllowValidationAnytime  bool     `json:"allowValidationAnytime"`
	RequireValidatorRole    bool     `json:"requireValidatorRole"`
	AntiReplayEnabled       bool     `json:"antiReplayEnabled"`
	MaxValidationsPerTicket int      `json:"maxValidationsPerTicket"`
	ValidationTimeoutSecs   int      `json:"validationTimeoutSeconds"`
	GeoLocationRequired     bool     `json:"geoLocationRequired"`
	AllowedLocations        []string `json:"allowedLocations"`
	LogValidations          bool     `json:"logValidations"`
}

func newPolicyDocument(pol domain.ValidationPolicy) policyDocument {
	return policyDocument{
		QRCodeEnabled:           pol.QRCodeEnabled,
		ScannerEnabled:          pol.ScannerEnabled,
		MultipleScansAllowed:    pol.MultipleScansAllowed,
		ScanTimeWindowDays:      pol.ScanTimeWindowDays,
		ValidationStartDays:     pol.ValidationStartDays,
		AllowValidationAnytime:  pol.AllowValidationAnytime,
		RequireValidatorRole:    pol.RequireValidatorRole,
		AntiReplayEnabled:       pol.AntiReplayEnabled,
		MaxValidationsPerTicket: pol.MaxValidationsPerTicket,
		ValidationTimeoutSecs:   pol.ValidationTimeoutSecs,
		GeoLocationRequired:     pol.GeoLocationRequired,
		AllowedLocations:        pol.AllowedLocations,
		LogValidations:          pol.LogValidations,
	}
}

func (d policyDocument) toPolicy() domain.ValidationPolicy {
	return domain.ValidationPolicy{
		QRCodeEnabled:           d.QRCodeEnabled,
		ScannerEnabled:          d.ScannerEnabled,
		MultipleScansAllowed:    d.MultipleScansAllowed,
		ScanTimeWindowDays:      d.ScanTimeWindowDays,
		ValidationStartDays:     d.ValidationStartDays,
		AllowValidationAnytime:  d.AllowValidationAnytime,
		RequireValidatorRole:    d.RequireValidatorRole,
		AntiReplayEnabled:       d.AntiReplayEnabled,
		MaxValidationsPerTicket: d.MaxValidationsPerTicket,
		ValidationTimeoutSecs:   d.ValidationTimeoutSecs,
		GeoLocationRequired:     d.GeoLocationRequired,
		AllowedLocations:        d.AllowedLocations,
		LogValidations:          d.LogValidations,
	}
}
