package specviz

import (
	"io/fs"

	"github.com/goliatone/go-specviz/pkg/renderers/vanilla"
)

// RuntimeAssetsFS exposes the stylesheet and the browser runtime that keeps
// an editor page in sync with its session.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(specviz.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
