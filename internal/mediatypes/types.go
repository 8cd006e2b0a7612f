package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the coarse media kind of an indexed file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeDoc represents a document file.
	FileTypeDoc FileType = "doc"
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps file extensions to whether they are indexed image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".webp": true,
}

// VideoExtensions maps file extensions to whether they are indexed video formats.
var VideoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".m4v": true,
	".avi": true,
}

// DocExtensions maps file extensions to whether they are indexed document formats.
var DocExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".ppt":  true,
	".pptx": true,
}

// AudioExtensions maps file extensions to whether they are indexed audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
}

// SidecarExtensions maps extensions of metadata sidecar files. Sidecars ride
// along with a primary media file and are never indexed in their own right.
var SidecarExtensions = map[string]bool{
	".xmp": true,
	".aae": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".webp": "image/webp",

	// Videos
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".m4v": "video/x-m4v",
	".avi": "video/x-msvideo",

	// Documents
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",

	// Audio
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	if DocExtensions[ext] {
		return FileTypeDoc
	}
	if AudioExtensions[ext] {
		return FileTypeAudio
	}
	return FileTypeOther
}

// Classify returns the FileType for a file name or path.
func Classify(name string) FileType {
	return GetFileType(strings.ToLower(filepath.Ext(name)))
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return FallbackMimeType
}

// IsSidecar returns true if the file name names a metadata sidecar.
func IsSidecar(name string) bool {
	return SidecarExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}
