package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldNeighborhood = "neighborhood"
	FieldCity         = "city"
	FieldRating       = "rating"
	FieldWebsite      = "website"
	FieldEmail1       = "email_1"
	FieldEmail2       = "email_2"
	FieldPhotoURL     = "photo_url"
	FieldPhotos       = "photos"
)

// FieldAlias lists, in priority order, the source keys accepted for one lead
// field. The first alias holding a non-empty value wins.
type FieldAlias struct {
	Field   string
	Aliases []string
}

var leadFieldAliases = []FieldAlias{
	{Field: FieldName, Aliases: []string{"name", "title"}},
	{Field: FieldPhone, Aliases: []string{"phone", "phoneNumber"}},
	{Field: FieldAddress, Aliases: []string{"address"}},
	{Field: FieldNeighborhood, Aliases: []string{"neighborhood", "bairro"}},
	{Field: FieldCity, Aliases: []string{"city", "cidade"}},
	{Field: FieldRating, Aliases: []string{"rating"}},
	{Field: FieldWebsite, Aliases: []string{"website"}},
	{Field: FieldEmail1, Aliases: []string{"email_1", "email"}},
	{Field: FieldEmail2, Aliases: []string{"email_2"}},
	{Field: FieldPhotoURL, Aliases: []string{"photo_url"}},
	{Field: FieldPhotos, Aliases: []string{"photos"}},
}

// LeadFieldAliases returns a copy of the alias table.
func LeadFieldAliases() []FieldAlias {
	out := make([]FieldAlias, 0, len(leadFieldAliases))
	for _, entry := range leadFieldAliases {
		out = append(out, FieldAlias{
			Field:   entry.Field,
			Aliases: append([]string(nil), entry.Aliases...),
		})
	}
	return out
}

func aliasesFor(field string) []string {
	for _, entry := range leadFieldAliases {
		if entry.Field == field {
			return entry.Aliases
		}
	}
	return nil
}

// NormalizeRecord maps a raw record onto an alias-free draft. The boolean is
// false when the record has no usable phone and must be dropped.
func NormalizeRecord(record RawRecord) (LeadDraft, bool) {
	draft := LeadDraft{
		Name:         firstText(record, aliasesFor(FieldName)),
		Phone:        firstText(record, aliasesFor(FieldPhone)),
		Address:      firstText(record, aliasesFor(FieldAddress)),
		Neighborhood: firstText(record, aliasesFor(FieldNeighborhood)),
		City:         firstText(record, aliasesFor(FieldCity)),
		Rating:       firstNumber(record, aliasesFor(FieldRating)),
		Website:      optionalText(firstText(record, aliasesFor(FieldWebsite))),
		Email1:       optionalText(firstText(record, aliasesFor(FieldEmail1))),
		Email2:       optionalText(firstText(record, aliasesFor(FieldEmail2))),
		PhotoURL:     optionalText(firstText(record, aliasesFor(FieldPhotoURL))),
		Photos:       firstTextList(record, aliasesFor(FieldPhotos)),
		Status:       LeadStatusNew,
	}
	if draft.Phone == "" {
		return LeadDraft{}, false
	}
	return draft, true
}

func firstText(record RawRecord, aliases []string) string {
	for _, alias := range aliases {
		value, ok := record[alias]
		if !ok {
			continue
		}
		if text := textValue(value); text != "" {
			return text
		}
	}
	return ""
}

func textValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		if typed == 0 {
			return ""
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		if typed == 0 {
			return ""
		}
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		if typed == 0 {
			return ""
		}
		return strconv.Itoa(typed)
	case int64:
		if typed == 0 {
			return ""
		}
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

// firstNumber treats zero and unparsable values as absent.
func firstNumber(record RawRecord, aliases []string) *float64 {
	for _, alias := range aliases {
		value, ok := record[alias]
		if !ok {
			continue
		}
		var parsed float64
		switch typed := value.(type) {
		case float64:
			parsed = typed
		case float32:
			parsed = float64(typed)
		case int:
			parsed = float64(typed)
		case int64:
			parsed = float64(typed)
		case json.Number:
			number, err := typed.Float64()
			if err != nil {
				continue
			}
			parsed = number
		case string:
			number, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(typed, ",", ".")), 64)
			if err != nil {
				continue
			}
			parsed = number
		default:
			continue
		}
		if parsed == 0 {
			continue
		}
		return &parsed
	}
	return nil
}

func firstTextList(record RawRecord, aliases []string) []string {
	for _, alias := range aliases {
		value, ok := record[alias]
		if !ok {
			continue
		}
		var out []string
		switch typed := value.(type) {
		case []string:
			for _, item := range typed {
				if text := strings.TrimSpace(item); text != "" {
					out = append(out, text)
				}
			}
		case []any:
			for _, item := range typed {
				if text := textValue(item); text != "" {
					out = append(out, text)
				}
			}
		case string:
			if text := strings.TrimSpace(typed); text != "" {
				out = append(out, text)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func optionalText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
