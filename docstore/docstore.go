package docstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Document is one entry of a category collection. DocIDs are unique within
// their category file.
type Document struct {
	DocID    string `json:"doc_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Metadata struct {
		LastUpdated string `json:"last_updated"`
	} `json:"metadata"`
}

// DocumentMetadata is the id/title/date view shown to the model during
// document selection; content is deliberately withheld at that stage.
type DocumentMetadata struct {
	DocID       string `json:"doc_id"`
	Title       string `json:"title"`
	LastUpdated string `json:"last_updated"`
}

// categoryFiles maps the three fixed category names to their JSON files.
var categoryFiles = map[string]string{
	"Payment_Information":                   "Payment_Information.json",
	"Policies_&_Terms":                      "Policies_&_Terms.json",
	"product_specification_and_information": "product_specification_and_information.json",
}

// Store reads category collections from a data directory. There is no
// caching: every load goes back to disk so edits to the files are picked up
// between stages of a query.
type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// KnownCategory reports whether name is one of the fixed categories.
func (s *Store) KnownCategory(name string) bool {
	_, ok := categoryFiles[name]
	return ok
}

// LoadCategory reads the full document collection of one category.
func (s *Store) LoadCategory(name string) ([]Document, error) {
	fileName, ok := categoryFiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", name)
	}

	path := filepath.Join(s.dataDir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading category file %s: %w", fileName, err)
	}

	var documents []Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("error parsing category file %s: %w", fileName, err)
	}

	return documents, nil
}

// MetadataView extracts the selection view for a collection.
func MetadataView(documents []Document) []DocumentMetadata {
	view := make([]DocumentMetadata, 0, len(documents))
	for _, doc := range documents {
		lastUpdated := doc.Metadata.LastUpdated
		if lastUpdated == "" {
			lastUpdated = "N/A"
		}
		view = append(view, DocumentMetadata{
			DocID:       doc.DocID,
			Title:       doc.Title,
			LastUpdated: lastUpdated,
		})
	}
	return view
}

// ValidateDocIDs filters ids down to those present in the collection,
// preserving the model's order. Hallucinated ids are simply dropped.
func ValidateDocIDs(documents []Document, ids []string) []string {
	known := make(map[string]bool, len(documents))
	for _, doc := range documents {
		known[doc.DocID] = true
	}

	validated := make([]string, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			validated = append(validated, id)
		}
	}
	return validated
}

// SelectByIDs returns the documents of a collection whose ids are in the
// given set, in collection order.
func SelectByIDs(documents []Document, ids []string) []Document {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var selected []Document
	for _, doc := range documents {
		if wanted[doc.DocID] {
			selected = append(selected, doc)
		}
	}
	return selected
}
