package models

// Metadata is the tagged-variant view of a record's metadata map. Each kind
// gets a typed struct for the fields namespace-specific logic relies on
// (video duration parsing, book use-case classification), while unrecognized
// keys round-trip through Extra untouched.
type Metadata struct {
	Kind     Kind                   `json:"kind" bson:"kind"`
	Title    string                 `json:"title" bson:"title"`
	Material *MaterialFields        `json:"material,omitempty" bson:"material,omitempty"`
	Video    *VideoFields           `json:"video,omitempty" bson:"video,omitempty"`
	Book     *BookFields            `json:"book,omitempty" bson:"book,omitempty"`
	Extra    map[string]interface{} `json:"extra,omitempty" bson:"extra,omitempty"`
}

type MaterialFields struct {
	Subject string `json:"subject,omitempty" bson:"subject,omitempty"`
	Level   string `json:"level,omitempty" bson:"level,omitempty"`
	Format  string `json:"format,omitempty" bson:"format,omitempty"`
}

type VideoFields struct {
	Duration string `json:"duration,omitempty" bson:"duration,omitempty"`
	Channel  string `json:"channel,omitempty" bson:"channel,omitempty"`
	Language string `json:"language,omitempty" bson:"language,omitempty"`
}

type BookFields struct {
	Author  string `json:"author,omitempty" bson:"author,omitempty"`
	Edition string `json:"edition,omitempty" bson:"edition,omitempty"`
	Pages   int    `json:"pages,omitempty" bson:"pages,omitempty"`
}

// knownKeys lists the metadata map keys lifted into typed fields, per kind.
var knownKeys = map[Kind][]string{
	KindMaterial: {"subject", "level", "format"},
	KindVideo:    {"duration", "channel", "language"},
	KindBook:     {"author", "edition", "pages"},
}

// MetadataFromMap builds the tagged variant from the raw provider map.
func MetadataFromMap(kind Kind, title string, raw map[string]interface{}) Metadata {
	md := Metadata{Kind: kind, Title: title}

	str := func(key string) string {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}

	switch kind {
	case KindMaterial:
		md.Material = &MaterialFields{
			Subject: str("subject"),
			Level:   str("level"),
			Format:  str("format"),
		}
	case KindVideo:
		md.Video = &VideoFields{
			Duration: str("duration"),
			Channel:  str("channel"),
			Language: str("language"),
		}
	case KindBook:
		md.Book = &BookFields{
			Author:  str("author"),
			Edition: str("edition"),
			Pages:   intFrom(raw["pages"]),
		}
	}

	known := make(map[string]bool)
	for _, k := range knownKeys[kind] {
		known[k] = true
	}
	for k, v := range raw {
		if known[k] {
			continue
		}
		if md.Extra == nil {
			md.Extra = make(map[string]interface{})
		}
		md.Extra[k] = v
	}

	return md
}

// Fields flattens the variant back into a single key/value view. The index
// stores this alongside each chunk so metadata filters address one flat
// field space regardless of kind.
func (m Metadata) Fields() map[string]interface{} {
	out := make(map[string]interface{})
	out["title"] = m.Title

	switch {
	case m.Material != nil:
		putNonEmpty(out, "subject", m.Material.Subject)
		putNonEmpty(out, "level", m.Material.Level)
		putNonEmpty(out, "format", m.Material.Format)
	case m.Video != nil:
		putNonEmpty(out, "duration", m.Video.Duration)
		putNonEmpty(out, "channel", m.Video.Channel)
		putNonEmpty(out, "language", m.Video.Language)
	case m.Book != nil:
		putNonEmpty(out, "author", m.Book.Author)
		putNonEmpty(out, "edition", m.Book.Edition)
		if m.Book.Pages > 0 {
			out["pages"] = m.Book.Pages
		}
	}

	for k, v := range m.Extra {
		out[k] = v
	}
	return out
}

func putNonEmpty(m map[string]interface{}, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func intFrom(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
