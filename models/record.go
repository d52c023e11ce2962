package models

import "fmt"

// Kind identifies the content class of a source record.
type Kind string

const (
	KindMaterial Kind = "material"
	KindVideo    Kind = "video"
	KindBook     Kind = "book"
)

// Namespace is an isolated vector collection, one per content kind.
type Namespace string

const (
	NamespaceMaterials Namespace = "materials"
	NamespaceVideos    Namespace = "videos"
	NamespaceBooks     Namespace = "books"
)

// AllNamespaces returns every namespace in stable order.
func AllNamespaces() []Namespace {
	return []Namespace{NamespaceMaterials, NamespaceVideos, NamespaceBooks}
}

// NamespaceForKind maps a record kind to the namespace its chunks live in.
func NamespaceForKind(k Kind) (Namespace, error) {
	switch k {
	case KindMaterial:
		return NamespaceMaterials, nil
	case KindVideo:
		return NamespaceVideos, nil
	case KindBook:
		return NamespaceBooks, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, k)
	}
}

// ParseNamespace validates a caller-supplied namespace name.
func ParseNamespace(s string) (Namespace, error) {
	switch Namespace(s) {
	case NamespaceMaterials, NamespaceVideos, NamespaceBooks:
		return Namespace(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrNamespaceNotFound, s)
	}
}

// SourceRecord is one educational record as delivered by the record provider.
// The provider owns it; this service only reads it.
type SourceRecord struct {
	ID         string                 `json:"id" bson:"id"`
	Kind       Kind                   `json:"kind" bson:"kind"`
	Title      string                 `json:"title" bson:"title"`
	TextFields map[string]string      `json:"text_fields" bson:"text_fields"`
	Metadata   map[string]interface{} `json:"metadata" bson:"metadata"`
}
