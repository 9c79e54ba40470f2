package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"taguchi/domain/core"
	"taguchi/domain/oa"
)

// Format is a supported array file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatLaTeX Format = "tex"
	FormatXLSX  Format = "xlsx"
)

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".tex":
		return FormatLaTeX, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", core.NewIOError("detect format", fmt.Errorf("unsupported file type %q", ext))
	}
}

// DataReader reads array files, choosing the parser from the extension
type DataReader struct {
	filePath string
	format   Format
}

// NewDataReader creates a reader for CSV, JSON or XLSX files
func NewDataReader(filePath string) (*DataReader, error) {
	format, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}
	if format == FormatLaTeX {
		return nil, core.NewIOError("detect format", fmt.Errorf("%s files are export only", format))
	}
	return &DataReader{filePath: filePath, format: format}, nil
}

// ReadMatrix returns the raw level matrix stored in the file
func (r *DataReader) ReadMatrix() ([][]int, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewIOError("open "+string(r.format), err)
	}
	defer f.Close()

	switch r.format {
	case FormatCSV:
		return ReadCSV(f)
	case FormatXLSX:
		return ReadXLSX(f)
	default:
		data, err := ReadJSON(f)
		if err != nil {
			return nil, err
		}
		return data.Data, nil
	}
}

// ReadOAData reads a JSON array with its metadata
func (r *DataReader) ReadOAData() (*oa.OAData, error) {
	if r.format != FormatJSON {
		return nil, core.NewIOError("read", fmt.Errorf("%s files carry no metadata", r.format))
	}
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewIOError("open json", err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// DataWriter writes array files, choosing the encoder from the extension
type DataWriter struct {
	filePath string
	format   Format
}

// NewDataWriter creates a writer for CSV, JSON, LaTeX or XLSX files
func NewDataWriter(filePath string) (*DataWriter, error) {
	format, err := FormatFromPath(filePath)
	if err != nil {
		return nil, err
	}
	return &DataWriter{filePath: filePath, format: format}, nil
}

// Write encodes data to the writer's file, replacing any existing content
func (w *DataWriter) Write(data oa.OAData) (err error) {
	f, err := os.Create(w.filePath)
	if err != nil {
		return core.NewIOError("create "+string(w.format), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = core.NewIOError("close "+string(w.format), cerr)
		}
	}()

	return Encode(f, w.format, data)
}

// Encode writes data in the given format
func Encode(out io.Writer, format Format, data oa.OAData) error {
	switch format {
	case FormatCSV:
		return WriteCSV(out, data)
	case FormatJSON:
		return WriteJSON(out, data)
	case FormatLaTeX:
		return WriteLaTeX(out, data)
	case FormatXLSX:
		return WriteXLSX(out, data)
	}
	return core.NewIOError("encode", fmt.Errorf("unsupported format %q", format))
}
