package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

func init() {
	Register(func() Exporter { return yamlExporter{} })
}

type yamlExporter struct{}

func (yamlExporter) Metadata() Metadata {
	return Metadata{Name: "yaml", Extension: ".yaml", Description: "YAML sequence of mappings"}
}

func (yamlExporter) Write(w io.Writer, t Table) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		item := &yaml.Node{Kind: yaml.MappingNode}
		for c, key := range t.Header {
			item.Content = append(item.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row[c]},
			)
		}
		doc.Content = append(doc.Content, item)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
