package storage

import (
	"net/http"
	"strings"
)

// =============================================================================
// Content Type Detection
// =============================================================================

// DetectContentType determines the MIME type of an upload.
//
// The bytes are sniffed first since a client-declared type cannot be trusted;
// declaredType is only used when sniffing yields nothing better than
// "application/octet-stream".
func DetectContentType(declaredType string, data []byte) string {
	sniffed := normalizeContentType(http.DetectContentType(data))
	if sniffed != "application/octet-stream" || declaredType == "" {
		return sniffed
	}
	return normalizeContentType(declaredType)
}

// normalizeContentType strips parameters such as charset and lowercases.
func normalizeContentType(contentType string) string {
	baseType := strings.Split(contentType, ";")[0]
	return strings.TrimSpace(strings.ToLower(baseType))
}
