package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// record is implemented by the bun models keyed on a string uuid "id" column.
// idRef returns nil for a nil receiver.
type record interface {
	idRef() *string
}

func (r *searchRecord) idRef() *string {
	if r == nil {
		return nil
	}
	return &r.ID
}

func (r *leadRecord) idRef() *string {
	if r == nil {
		return nil
	}
	return &r.ID
}

func searchHandlers() repository.ModelHandlers[*searchRecord] {
	return uuidHandlers(func() *searchRecord { return &searchRecord{} })
}

func leadHandlers() repository.ModelHandlers[*leadRecord] {
	return uuidHandlers(func() *leadRecord { return &leadRecord{} })
}

func uuidHandlers[R record](newRecord func() R) repository.ModelHandlers[R] {
	return repository.ModelHandlers[R]{
		NewRecord: newRecord,
		GetID: func(r R) uuid.UUID {
			if ref := r.idRef(); ref != nil {
				if parsed, err := uuid.Parse(strings.TrimSpace(*ref)); err == nil {
					return parsed
				}
			}
			return uuid.Nil
		},
		SetID: func(r R, id uuid.UUID) {
			if ref := r.idRef(); ref != nil {
				*ref = id.String()
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r R) string {
			if ref := r.idRef(); ref != nil {
				return strings.TrimSpace(*ref)
			}
			return ""
		},
	}
}

// parseRecordID normalizes an id taken from a request. Ids that are not
// uuids cannot match a row, and postgres rejects them as a syntax error.
func parseRecordID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
