package assetgate

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// DigestHexLength is the length of a digest produced by Digest.
const DigestHexLength = sha256.Size * 2

// Digest returns the lowercase hex SHA-256 of raw's UTF-8 bytes.
// API key records store this value instead of the key itself.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ValidationToken returns the weak ETag for a file of the given size and
// modification time. Only whole seconds of modTime are significant, so the
// token changes exactly when the Last-Modified header would.
//
// Two different files with equal size and mtime produce the same token.
func ValidationToken(sizeBytes int64, modTime time.Time) string {
	input := strconv.FormatInt(sizeBytes, 10) + ":" + strconv.FormatInt(modTime.UTC().Unix(), 10)
	return `W/"` + Digest(input) + `"`
}
