package webhooks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/XandyNerd/BuscarLead/core"
	goerrors "github.com/goliatone/go-errors"
)

type ingestPayload struct {
	SearchID string          `json:"search_id"`
	Leads    json.RawMessage `json:"leads"`
}

// DecodeIngestPayload parses {search_id, leads}. A missing or non-array
// leads value is an empty batch; array entries that are not objects are
// dropped. Numbers are kept as json.Number so long phone numbers survive.
func DecodeIngestPayload(body []byte) (core.IngestRequest, error) {
	var payload ingestPayload
	if err := decodeJSON(body, &payload); err != nil {
		return core.IngestRequest{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "webhooks: invalid json body").
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ServiceErrorBadInput)
	}
	searchID := strings.TrimSpace(payload.SearchID)
	if searchID == "" {
		return core.IngestRequest{}, core.NewValidationError("search_id", "search_id is required")
	}

	req := core.IngestRequest{SearchID: searchID}
	var items []json.RawMessage
	if len(payload.Leads) == 0 || decodeJSON(payload.Leads, &items) != nil {
		return req, nil
	}
	req.Records = make([]core.RawRecord, 0, len(items))
	for _, item := range items {
		var record map[string]any
		if err := decodeJSON(item, &record); err != nil || record == nil {
			continue
		}
		req.Records = append(req.Records, core.RawRecord(record))
	}
	return req, nil
}

func decodeJSON(raw []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}
