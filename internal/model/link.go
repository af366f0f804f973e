package model

// LinkRecord is a displayable link found in free-form text.
// An empty Title means the link appeared as a bare URL.
type LinkRecord struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Label returns the text to show for the link.
func (l LinkRecord) Label() string {
	if l.Title != "" {
		return l.Title
	}
	return l.URL
}
