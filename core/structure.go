package core

// Heading represents a single heading found in the canonical content.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

// Link represents a hyperlink found in the canonical content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Section is the text between one heading and the next.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
}

// Structure holds structural metadata parsed from canonical content.
type Structure struct {
	Headings []Heading      `json:"headings"`
	Links    []Link         `json:"links"`
	Lists    int            `json:"lists"`
	Items    int            `json:"list_items"`
	Callouts map[string]int `json:"callouts"`
	Tables   int            `json:"tables"`
	Images   int            `json:"images"`
}

// Report is the complete JSON output for a single document.
type Report struct {
	Source    string    `json:"source"`
	HTML      string    `json:"html"`
	Markdown  string    `json:"markdown"`
	Warnings  []string  `json:"warnings"`
	Text      string    `json:"text"`
	Sections  []Section `json:"sections"`
	Structure Structure `json:"structure"`
}
