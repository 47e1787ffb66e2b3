package service

import (
	"errors"
	"strings"

	"bengkel-bot/internal/models"
)

var errTemplateIncomplete = errors.New("complaint template incomplete")

// templateLabels maps the lowercased template labels to session fields.
var templateLabels = map[string]string{
	"nama":        models.FieldName,
	"merek mobil": models.FieldBrand,
	"jenis mobil": models.FieldModel,
	"keluhan":     models.FieldComplaint,
}

var confirmationPhrases = map[string]struct{}{
	"ya buatkan": {},
}

// parseComplaintTemplate reads "label: value" lines. Every label must be
// present; otherwise nothing is returned.
func parseComplaintTemplate(text string) (map[string]string, error) {
	parsed := make(map[string]string, len(templateLabels))
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if field, known := templateLabels[strings.ToLower(strings.TrimSpace(label))]; known {
			parsed[field] = strings.TrimSpace(value)
		}
	}
	if len(parsed) != len(templateLabels) {
		return nil, errTemplateIncomplete
	}
	return parsed, nil
}

func normalizeReply(text string) string {
	text = strings.ToLower(text)
	text = strings.NewReplacer(",", "", ".", "").Replace(text)
	return strings.TrimSpace(text)
}

func isConfirmation(text string) bool {
	_, ok := confirmationPhrases[normalizeReply(text)]
	return ok
}

func isCancellation(text string) bool {
	return normalizeReply(text) == "batal"
}
