package transport

import (
	"net/http"

	"github.com/XandyNerd/BuscarLead/core"
	goerrors "github.com/goliatone/go-errors"
)

// failure builds the error returned by every transport call. The HTTP status
// and service text code follow from the category; source may be nil.
func failure(source error, category goerrors.Category, message string, fields map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, category)
	} else {
		err = goerrors.Wrap(source, category, message)
	}
	status, textCode := http.StatusInternalServerError, core.ServiceErrorInternal
	switch category {
	case goerrors.CategoryBadInput:
		status, textCode = http.StatusBadRequest, core.ServiceErrorBadInput
	case goerrors.CategoryExternal:
		status, textCode = http.StatusBadGateway, core.ServiceErrorExternalFailure
	}
	err = err.WithCode(status).WithTextCode(textCode)
	if len(fields) > 0 {
		err.WithMetadata(fields)
	}
	return err
}
