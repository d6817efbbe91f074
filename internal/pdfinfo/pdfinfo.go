package pdfinfo

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// Info summarizes a local PDF before it is shipped to the indexer.
type Info struct {
	Pages int
	Bytes int64
}

// Inspect verifies the file parses as a PDF and reports its size. Uploads are
// rejected locally on failure so the backend never sees a broken document.
func Inspect(path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	return Info{Pages: reader.NumPage(), Bytes: stat.Size()}, nil
}
