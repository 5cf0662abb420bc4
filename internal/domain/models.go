// backend-go/internal/domain/models.go
package domain

// UploadedFile is a source file received in a multipart request
type UploadedFile struct {
	Filename string
	Data     []byte
}

// OneDriveCloseRequest closes a period from two OneDrive items, read with
// the user's delegated token.
type OneDriveCloseRequest struct {
	Period string `json:"period" binding:"required"`
	Token  string `json:"token" binding:"required"`
	InvID  string `json:"invId" binding:"required"`
	VenID  string `json:"venId" binding:"required"`
}

// RemoteCloseRequest closes a period from two files of a configured store.
type RemoteCloseRequest struct {
	Period string `json:"period" binding:"required"`
	Source string `json:"source" binding:"required,oneof=drive s3 gcs"`
	InvID  string `json:"invId" binding:"required"`
	VenID  string `json:"venId" binding:"required"`
}

// Document is a closed inventory workbook ready to be downloaded
type Document struct {
	Filename   string
	Content    []byte
	RunID      string
	Rows       int
	Degenerate bool
}
