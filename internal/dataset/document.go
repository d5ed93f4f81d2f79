package dataset

// Document is one unit of free text in a corpus. The identifier is caller
// supplied and not required to be unique.
type Document struct {
	ID   string `json:"doc_id"`
	Text string `json:"text"`
}
