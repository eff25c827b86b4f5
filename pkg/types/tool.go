// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ToolID identifies a conversion tool (e.g. "merge", "pdf-to-excel").
type ToolID string

const (
	ToolMerge           ToolID = "merge"
	ToolSplit           ToolID = "split"
	ToolCompress        ToolID = "compress"
	ToolPDFToWord       ToolID = "pdf-to-word"
	ToolPDFToExcel      ToolID = "pdf-to-excel"
	ToolPDFToPowerpoint ToolID = "pdf-to-powerpoint"
	ToolWordToPDF       ToolID = "word-to-pdf"
	ToolPowerpointToPDF ToolID = "powerpoint-to-pdf"
	ToolExcelToPDF      ToolID = "excel-to-pdf"
)

// ToolDescriptor couples the display metadata of a tool with the wire
// contract of its remote endpoint.
type ToolDescriptor struct {
	ID ToolID `json:"id" yaml:"id"`

	// Route is the page path the tool is reachable under (e.g. "/merge-pdf").
	Route string `json:"route" yaml:"route"`

	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Color is the raw accent class as authored (e.g. "bg-[#D6E7FF]").
	Color string `json:"color" yaml:"color"`

	// Action is the verb shown on the completion screen (e.g. "Merge").
	Action string `json:"action" yaml:"action"`

	// Endpoint is the path relative to the API base URL, including any
	// query string (e.g. "api/pdf/pdf-to-excel/?mode=single").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// MultiInput tools attach every staged file under the repeated
	// "files" field; single-input tools attach the first under "file".
	MultiInput bool `json:"multi_input" yaml:"multi_input"`

	// OrderSensitive tools let the user reorder staged files.
	OrderSensitive bool `json:"order_sensitive" yaml:"order_sensitive"`

	// Accept lists accepted input extensions, lower case with the dot.
	Accept []string `json:"accept" yaml:"accept"`

	// TargetMIME is the content type of the produced artifact.
	TargetMIME string `json:"target_mime" yaml:"target_mime"`

	// Filename is the suggested download filename.
	Filename string `json:"filename" yaml:"filename"`

	// Params lists the parameter fields the tool sends ("level", "range").
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// FieldName returns the multipart field the tool's files are attached under.
func (d ToolDescriptor) FieldName() string {
	if d.MultiInput {
		return "files"
	}
	return "file"
}

// HasParam reports whether the tool sends the named parameter field.
func (d ToolDescriptor) HasParam(name string) bool {
	for _, p := range d.Params {
		if p == name {
			return true
		}
	}
	return false
}
