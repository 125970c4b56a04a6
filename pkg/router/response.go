package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func writeJson(ctx context.Context, w http.ResponseWriter, resp response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal the response: %v", err)
		return errorx.New(errorx.BadResponse, "Cannot write the response")
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}
