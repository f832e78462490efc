package blobstore

import (
	"strings"

	"fh-go/internal/model"
)

// Object storage backends keep every payload at <prefix>blobs/<hash>.

func objectKey(prefix string, hash model.ContentHash) string {
	return blobsPrefix(prefix) + hash.String()
}

func blobsPrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + "blobs/"
}

// parseObjectKey extracts the hash from a key produced by objectKey.
// ok is false for keys outside the blobs prefix or with a malformed hash.
func parseObjectKey(prefix string, key string) (model.ContentHash, bool) {
	rest, found := strings.CutPrefix(key, blobsPrefix(prefix))
	if !found {
		return model.ContentHash{}, false
	}
	h, err := model.ParseContentHash(rest)
	if err != nil {
		return model.ContentHash{}, false
	}
	return h, true
}
