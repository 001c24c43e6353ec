package model

type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
	FileTypeDoc   FileType = "doc"
)

// SharedFile is a resource the coach shared with clients.
type SharedFile struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Date string   `json:"date"`
	Size string   `json:"size"`
	Type FileType `json:"type"`
}
