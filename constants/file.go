package constants

import (
	"mime"
	"strings"
)

// MaxDocumentSize is the upload limit for a single document (10MB).
const MaxDocumentSize int64 = 10 << 20

// Declared content types the pipeline knows about.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
	ContentTypeJPG  = "image/jpg"
	ContentTypeWEBP = "image/webp"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeDOC  = "application/msword"
)

// Document formats, as stored alongside a record.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	WORD  = "WORD"
)

// AcceptedContentTypes are the types a record may be created with. Word documents
// are accepted for storage but have no text extractor yet.
var AcceptedContentTypes = map[string]struct{}{
	ContentTypePDF:  {},
	ContentTypePNG:  {},
	ContentTypeJPEG: {},
	ContentTypeJPG:  {},
	ContentTypeWEBP: {},
	ContentTypeDOCX: {},
	ContentTypeDOC:  {},
}

// AllowedExtensions holds the file extensions picked up by directory ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// NormalizeContentType lowercases a MIME type and drops any parameters.
func NormalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// ContentTypeForExt maps a file extension to the declared content type used on ingest.
func ContentTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return ContentTypePDF
	case "png":
		return ContentTypePNG
	case "jpg", "jpeg":
		return ContentTypeJPEG
	case "webp":
		return ContentTypeWEBP
	case "docx":
		return ContentTypeDOCX
	case "doc":
		return ContentTypeDOC
	default:
		return ""
	}
}

// FormatForContentType maps a content type to PDF | IMAGE | WORD, or "" if unknown.
func FormatForContentType(ct string) string {
	switch NormalizeContentType(ct) {
	case ContentTypePDF:
		return PDF
	case ContentTypePNG, ContentTypeJPEG, ContentTypeJPG, ContentTypeWEBP:
		return IMAGE
	case ContentTypeDOCX, ContentTypeDOC:
		return WORD
	default:
		return ""
	}
}

// ExtForContentType returns the file extension (with dot) used for temp files handed to OCR.
func ExtForContentType(ct string) string {
	switch NormalizeContentType(ct) {
	case ContentTypePDF:
		return ".pdf"
	case ContentTypePNG:
		return ".png"
	case ContentTypeJPEG, ContentTypeJPG:
		return ".jpg"
	case ContentTypeWEBP:
		return ".webp"
	default:
		return ""
	}
}
