package util

import (
	"crypto/md5"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// HashUUID derives a stable UUID from any JSON-serializable value.
func HashUUID(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	hasher := md5.New()
	hasher.Write([]byte(raw))
	hash := hasher.Sum(nil)
	uuid, err := uuid.FromBytes(hash[:16])
	if err != nil {
		return ""
	}
	return uuid.String()
}

// Xxh64Hex returns the xxhash64 digest of value in hex, for cheap content
// comparison across large legacy archives.
func Xxh64Hex(value []byte) string {
	return strconv.FormatUint(xxhash.Sum64(value), 16)
}
