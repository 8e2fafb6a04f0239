package common

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dslipak/pdf"
)

// ExtractRowsFromPDFReader converts a PDF into its text rows, one string
// per visual row. This is the boundary where unstructured bank PDFs
// become the line slice the engine consumes; the engine itself never
// touches PDF data.
func ExtractRowsFromPDFReader(reader io.Reader) ([]string, error) {
	var rAt io.ReaderAt
	var size int64

	switch v := reader.(type) {
	case io.ReaderAt:
		rAt = v
		seeker, ok := reader.(io.Seeker)
		if !ok {
			return nil, errors.New("reader is io.ReaderAt but not io.Seeker, cannot determine size")
		}
		cur, _ := seeker.Seek(0, io.SeekCurrent)
		end, _ := seeker.Seek(0, io.SeekEnd)
		seeker.Seek(cur, io.SeekStart)
		size = end
	default:
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, err
		}
		b := buf.Bytes()
		rAt = bytes.NewReader(b)
		size = int64(len(b))
	}

	r, err := pdf.NewReader(rAt, size)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	rows := make([]string, 0, numPages*100)

	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		pageRows, err := page.GetTextByRow()
		if err != nil {
			log.Printf("Warning: error getting text from page %d: %v", no, err)
			continue
		}

		for _, row := range pageRows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				rows = append(rows, builder.String())
			}
		}
	}

	return rows, nil
}

// ExtractRowsFromPDF reads the file at path and extracts its text rows.
func ExtractRowsFromPDF(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractRowsFromPDFReader(file)
}

// ReadTextLines reads an already-converted text file into lines.
func ReadTextLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}
