package fontinfo

import "fonarchive/internal/collector"

const stageName = "validate"

// StyleVariable marks a variable font in place of a static style.
const StyleVariable = "VARIABLE"

// Record is everything known about one validated font.
type Record struct {
	// CurrentName is the working relative path the record was read from.
	CurrentName string
	FileType    FileType
	FontName    string
	Weight      string
	Style       string
	IsVariable  bool
	BaseFamily  string
	// XMLID is the matching descriptor id, empty when the font's own tables
	// were used.
	XMLID string
	// Source names the extractor that produced the record.
	Source string
}

// Skipped is a working file rejected during validation.
type Skipped struct {
	File   collector.WorkingFile
	Reason string
	Err    error
}
