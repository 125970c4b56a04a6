package router

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/mitchellh/mapstructure"
)

func wrapHandler[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	befores := r.befores
	afters := r.afters
	closers := r.closers

	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		ctx = xcontext.WithDB(ctx, r.db)
		ctx = xcontext.WithConfigs(ctx, r.cfg)
		ctx = xcontext.WithLogger(ctx, r.logger)
		ctx = xcontext.WithSnowFlake(ctx, r.node)
		ctx = xcontext.WithHTTPRequest(ctx, req)
		ctx = xcontext.WithError(ctx)

		err := func() error {
			if req.Method != method {
				return errorx.New(errorx.NotFound, "Not found api")
			}

			var err error
			for _, middleware := range befores {
				if ctx, err = middleware(ctx); err != nil {
					return err
				}
			}

			request := new(Request)
			if err := parseRequest(req, request); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot parse request of %s: %v", req.URL.Path, err)
				return errorx.New(errorx.BadRequest, "Cannot parse request")
			}

			response, err := handler(ctx, request)
			if err != nil {
				return err
			}

			for _, middleware := range afters {
				if ctx, err = middleware(ctx); err != nil {
					return err
				}
			}

			return writeJson(ctx, w, newResponse(response))
		}()

		if err != nil {
			xcontext.SetError(ctx, err)
			if err := writeJson(ctx, w, newErrorResponse(err)); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot write the error response: %v", err)
			}
		}

		for _, closer := range closers {
			closer(ctx)
		}
	}
}

func parseRequest(req *http.Request, request any) error {
	if req.Method == http.MethodGet {
		values := map[string]string{}
		for key := range req.URL.Query() {
			values[key] = req.URL.Query().Get(key)
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           request,
		})
		if err != nil {
			return err
		}

		return decoder.Decode(values)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}

	if len(body) == 0 {
		return nil
	}

	return json.Unmarshal(body, request)
}
