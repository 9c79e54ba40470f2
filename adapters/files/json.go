package files

import (
	"encoding/json"
	"io"

	"taguchi/domain/core"
	"taguchi/domain/oa"
)

// WriteJSON writes an array as indented JSON
func WriteJSON(w io.Writer, data oa.OAData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return core.NewIOError("write json", err)
	}
	return nil
}

// ReadJSON reads an array previously written by WriteJSON
func ReadJSON(r io.Reader) (*oa.OAData, error) {
	var data oa.OAData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, core.NewIOError("read json", err)
	}
	return &data, nil
}
