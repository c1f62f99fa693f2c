package emitter

import (
	"context"
	"net/http"
	"net/url"
)

type (
	// OpenConnectionParams is what a connection needs to dial its peer.
	OpenConnectionParams struct {
		URL    url.URL
		Header http.Header
	}

	OpenConnectionParamsGetter func(ctx context.Context) (OpenConnectionParams, error)

	// OpenConnectionParamsRepo resolves dial parameters on every (re)connection, so
	// tokens or listen keys embedded in the URL can be refreshed.
	OpenConnectionParamsRepo struct {
		logger Logger
		getter OpenConnectionParamsGetter
	}
)

func (r OpenConnectionParamsRepo) Get(
	ctx context.Context,
) (params OpenConnectionParams, err error) {
	params, err = r.getter(ctx)
	if err != nil {
		r.logger.Errorf("cannot fetch open connection params: %s", err)
	}
	return
}

func NewOpenConnectionParamsRepo(
	logger Logger,
	getter OpenConnectionParamsGetter,
) OpenConnectionParamsRepo {
	return OpenConnectionParamsRepo{getter: getter, logger: logger}
}

// StaticOpenConnectionParams always resolves to the same URL and header.
func StaticOpenConnectionParams(u url.URL, header http.Header) OpenConnectionParamsGetter {
	return func(context.Context) (OpenConnectionParams, error) {
		return OpenConnectionParams{URL: u, Header: header.Clone()}, nil
	}
}
