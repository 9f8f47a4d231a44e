package export

import (
	"encoding/csv"
	"io"
)

func init() {
	Register(func() Exporter { return csvExporter{} })
}

type csvExporter struct{}

func (csvExporter) Metadata() Metadata {
	return Metadata{Name: "csv", Extension: ".csv", Description: "comma-separated values"}
}

func (csvExporter) Write(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
