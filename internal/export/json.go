package export

import (
	"bytes"
	"encoding/json"
	"io"
)

func init() {
	Register(func() Exporter { return jsonExporter{} })
}

type jsonExporter struct{}

func (jsonExporter) Metadata() Metadata {
	return Metadata{Name: "json", Extension: ".json", Description: "JSON array of objects"}
}

// Write emits an array of objects whose keys follow the table header order.
// encoding/json would sort map keys, so objects are assembled by hand.
func (jsonExporter) Write(w io.Writer, t Table) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, key := range t.Header {
			if c > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(key)
			if err != nil {
				return err
			}
			v, err := json.Marshal(row[c])
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
