package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type gzipBody struct {
	*gzip.Reader
	source interface{ Close() error }
}

func (b gzipBody) Close() error {
	if err := b.Reader.Close(); err != nil {
		return err
	}

	return b.source.Close()
}

// DecompressBodyReader transparently inflates gzip-encoded request bodies.
func DecompressBodyReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		if !strings.Contains(req.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(resp, req)
			return
		}

		reader, err := gzip.NewReader(req.Body)
		if err != nil {
			zap.L().Info("cannot create gzip reader for request body", zap.Error(err))

			resp.WriteHeader(http.StatusBadRequest)
			return
		}

		req.Body = gzipBody{Reader: reader, source: req.Body}
		req.Header.Del("Content-Encoding")
		req.ContentLength = -1

		next.ServeHTTP(resp, req)
	})
}
