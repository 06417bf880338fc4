package docstore

import (
	"encoding/json"
	"strings"
	"time"
)

type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
	raw       []byte
}

type Snapshot struct {
	Query     Query
	Documents []Document
	ReadAt    time.Time
}

func newDocument(record Record) (Document, error) {
	data := map[string]any{}
	if err := json.Unmarshal(record.Data, &data); err != nil {
		return Document{}, err
	}
	return Document{
		ID:        record.ID,
		Data:      data,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		raw:       record.Data,
	}, nil
}

// DataTo decodes the document into v, the same way it was encoded on write.
func (d Document) DataTo(v any) error {
	return json.Unmarshal(d.raw, v)
}

// Field looks a value up by a dotted path, e.g. "companyDetails.name".
func (d Document) Field(path string) (any, bool) {

	var current any = d.Data
	for _, part := range strings.Split(path, ".") {
		fields, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = fields[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func encodeFields(fields any) ([]byte, map[string]any, error) {

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, err
	}

	decoded := map[string]any{}
	if err = json.Unmarshal(data, &decoded); err != nil {
		return nil, nil, err
	}
	return data, decoded, nil
}

func setPath(fields map[string]any, path string, value any) {

	parts := strings.Split(path, ".")
	current := fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
