package util

import (
	"mime"
	"net/http"
	"strings"
)

const octetStream = "application/octet-stream"

// SniffImageMIME recognises the common photo formats by magic bytes and falls
// back to net/http sniffing for everything else.
func SniffImageMIME(b []byte) string {
	// JPEG: FF D8
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	// PNG
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	// HEIC/HEIF: ftyp box with a heic-family brand
	if len(b) >= 12 && string(b[4:8]) == "ftyp" {
		switch string(b[8:12]) {
		case "heic", "heix", "hevc", "hevx":
			return "image/heic"
		case "mif1", "msf1":
			return "image/heif"
		}
	}
	if len(b) > 0 {
		return http.DetectContentType(b) // image/gif, image/webp, application/pdf ...
	}
	return octetStream
}

// PickMIME keeps the client-declared type when it says something useful,
// otherwise sniffs the bytes. Parameters such as charset are dropped.
func PickMIME(declared string, data []byte) string {
	if d := strings.TrimSpace(declared); d != "" {
		if mt, _, err := mime.ParseMediaType(d); err == nil && mt != octetStream {
			return mt
		}
	}
	return SniffImageMIME(data)
}
