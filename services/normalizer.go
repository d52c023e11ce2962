package services

import (
	"fmt"
	"strings"

	"axiona-learning-core/models"
)

// NormalizedRecord is the uniform tuple every kind of source record is
// reduced to before chunking.
type NormalizedRecord struct {
	ID        string
	Kind      models.Kind
	Namespace models.Namespace
	Title     string
	Text      string
	Metadata  models.Metadata
}

// requiredTextFields lists, per kind, the fields that may carry the record's
// indexable text. The first non-empty one wins.
var requiredTextFields = map[models.Kind][]string{
	models.KindMaterial: {"content", "text"},
	models.KindVideo:    {"transcript", "description"},
	models.KindBook:     {"summary", "description"},
}

// NormalizeRecord converts a raw record into the uniform tuple. It is a pure
// function: unknown kinds and records without usable text are rejected, and
// the caller decides whether that skips the record or fails the request.
func NormalizeRecord(rec models.SourceRecord) (NormalizedRecord, error) {
	ns, err := models.NamespaceForKind(rec.Kind)
	if err != nil {
		return NormalizedRecord{}, err
	}

	fields, ok := requiredTextFields[rec.Kind]
	if !ok {
		return NormalizedRecord{}, fmt.Errorf("%w: %q", models.ErrUnsupportedKind, rec.Kind)
	}

	var body string
	for _, f := range fields {
		if v := strings.TrimSpace(rec.TextFields[f]); v != "" {
			body = v
			break
		}
	}
	if body == "" {
		return NormalizedRecord{}, fmt.Errorf("%w: record %s (%s) has none of %v",
			models.ErrEmptyContent, rec.ID, rec.Kind, fields)
	}

	text := body
	if title := strings.TrimSpace(rec.Title); title != "" {
		text = title + "\n\n" + body
	}

	return NormalizedRecord{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Namespace: ns,
		Title:     rec.Title,
		Text:      text,
		Metadata:  models.MetadataFromMap(rec.Kind, rec.Title, rec.Metadata),
	}, nil
}
