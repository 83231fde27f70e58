package fetch

import (
	"fmt"
	"path"
	"strings"
)

const scheme = "s3://"

// Location is an object in a bucket.
type Location struct {
	Bucket string
	Key    string
}

// ParseURI splits s3://bucket/key. The key keeps all of its path segments.
func ParseURI(uri string) (Location, error) {
	if !strings.HasPrefix(uri, scheme) {
		return Location{}, fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(uri, scheme), "/")
	if bucket == "" || key == "" {
		return Location{}, fmt.Errorf("s3 uri needs bucket and key: %q", uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

func (l Location) String() string {
	return scheme + l.Bucket + "/" + l.Key
}

// Name is the last path segment of the key.
func (l Location) Name() string {
	return path.Base(l.Key)
}

// WithExt returns the location with the extension of the key replaced by ext.
func (l Location) WithExt(ext string) Location {
	key := strings.TrimSuffix(l.Key, path.Ext(l.Key))
	return Location{Bucket: l.Bucket, Key: key + ext}
}

// JobName is the object name up to its first dot, e.g. "shot" for "uploads/shot.v2.zip".
func JobName(key string) string {
	name, _, _ := strings.Cut(path.Base(key), ".")
	return name
}
