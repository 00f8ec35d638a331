package filesystem

import (
	"path/filepath"
	"strings"
)

// DefaultContentType is served for extensions missing from the table.
const DefaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".7z":      "application/x-7z-compressed",
	".avro":    "application/avro",
	".bmp":     "image/bmp",
	".css":     "text/css",
	".csv":     "text/csv",
	".doc":     "application/msword",
	".docx":    "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".gif":     "image/gif",
	".gz":      "application/x-gzip",
	".htm":     "text/html",
	".html":    "text/html",
	".ico":     "image/x-icon",
	".jpeg":    "image/jpeg",
	".jpg":     "image/jpeg",
	".js":      "text/javascript",
	".json":    "application/json",
	".md":      "text/markdown",
	".mp3":     "audio/mpeg",
	".mp4":     "video/mp4",
	".parquet": "application/vnd.apache.parquet",
	".pdf":     "application/pdf",
	".png":     "image/png",
	".ppt":     "application/vnd.ms-powerpoint",
	".pptx":    "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".svg":     "image/svg+xml",
	".tar":     "application/x-tar",
	".tsv":     "text/tab-separated-values",
	".txt":     "text/plain",
	".wav":     "audio/wav",
	".webp":    "image/webp",
	".xls":     "application/vnd.ms-excel",
	".xlsx":    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xml":     "text/xml",
	".yaml":    "application/x-yaml",
	".yml":     "application/x-yaml",
	".zip":     "application/zip",
}

// ContentTypeFor maps a file name's extension to a MIME type using a fixed
// table. Extension matching is case-insensitive.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}
