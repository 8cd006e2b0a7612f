// Package mediatypes classifies files for the media indexer.
//
// This package exists as a dependency-light foundation that can be imported by
// other packages without creating import cycles. It contains the extension
// tables, the FileType enum, and the MIME resolution strategies.
//
// # File Types
//
// The package defines a FileType enum for categorizing media files:
//
//	mediatypes.FileTypeImage // Indexed image formats (jpg, png, heic, etc.)
//	mediatypes.FileTypeVideo // Indexed video formats (mp4, mov, m4v, avi)
//	mediatypes.FileTypeDoc   // Document formats (pdf, txt, office files)
//	mediatypes.FileTypeAudio // Audio formats (mp3, m4a, flac)
//	mediatypes.FileTypeOther // Unrecognized or unsupported files
//
// Use Classify to determine the type of a file from its name:
//
//	fileType := mediatypes.Classify(filename)
//
// # MIME Resolution
//
// ResolveMime supports three strategies selected by MimeMode:
//
//	mediatypes.MimeModeExt     // static extension table, no I/O
//	mediatypes.MimeModeMagic   // content-signature sniffing (bounded prefix)
//	mediatypes.MimeModeFilecmd // delegation to the file(1) utility
//
// Resolution never fails: unresolvable values degrade to FallbackMimeType so
// that MIME problems can never block a file's indexing.
package mediatypes
