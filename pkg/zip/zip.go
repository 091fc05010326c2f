package zip

import (
	"archive/zip"
	"bytes"
)

// Asset is one exported build artifact, such as the page tree JSON or a
// generated sitemap.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets bundles a finished site's artifacts into a zip for the
// export endpoint. Assets that cannot be added are skipped.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
