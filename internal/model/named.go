package model

// NamedObject is a JAMF object referenced by ID and name, such as a
// building, department, site or prestage.
type NamedObject struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
