package models

import "io"

type ImageKind string

const (
	ImageKindPost         ImageKind = "post"
	ImageKindProfilePhoto ImageKind = "profilePhoto"
	ImageKindCoverPhoto   ImageKind = "coverPhoto"
)

// ParseImageKind maps the path segment of an upload request to a kind. The
// web client also sends profilePicture and coverPicture.
func ParseImageKind(s string) (ImageKind, bool) {
	switch s {
	case "post", "posts":
		return ImageKindPost, true
	case "profilePhoto", "profilePicture":
		return ImageKindProfilePhoto, true
	case "coverPhoto", "coverPicture":
		return ImageKindCoverPhoto, true
	}
	return "", false
}

// Attachment is a single uploaded file as received from a multipart form.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}
