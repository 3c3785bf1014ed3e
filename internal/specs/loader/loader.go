// Package loader reads raw spec and hint documents from files, an fs.FS
// bundle, or HTTP endpoints.
package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-specviz/pkg/schema"
)

// Options configures the read strategies.
type Options struct {
	FileSystem     fs.FS
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
}

// Reader fetches documents by source kind.
type Reader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// New constructs a Reader from options.
func New(options Options) *Reader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTP:
		client = &http.Client{Timeout: timeout}
	}

	return &Reader{
		fs:        options.FileSystem,
		http:      client,
		allowHTTP: client != nil,
		timeout:   timeout,
	}
}

// Read fetches a document from src. Missing documents wrap fs.ErrNotExist.
func (r *Reader) Read(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("spec loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, r.fs, src.Location())
	case schema.SourceKindURL:
		if !r.allowHTTP {
			return schema.Document{}, errors.New("spec loader: http support disabled")
		}
		data, err = loadHTTP(ctx, r.http, src.Location(), r.timeout)
	default:
		err = errors.New("spec loader: unsupported source kind")
	}
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(src, data)
}
