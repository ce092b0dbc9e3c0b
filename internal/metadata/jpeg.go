package metadata

import (
	"bytes"
	"errors"

	"github.com/rwcarlsen/goexif/exif"
)

type goexifTags struct {
	x *exif.Exif
}

func (g goexifTags) lookup(name string) (string, bool) {
	tag, err := g.x.Get(exif.FieldName(name))
	if err != nil || tag == nil {
		return "", false
	}
	value, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return value, true
}

// decodeJPEG reads the APP1 EXIF segment. Non-critical decode errors (for
// example a broken maker note) still yield the tags that were loaded.
func decodeJPEG(data []byte) (tagSource, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if x == nil {
		if err == nil {
			err = errors.New("exif: no data")
		}
		return nil, err
	}
	if err != nil && exif.IsCriticalError(err) {
		return nil, err
	}
	return goexifTags{x: x}, nil
}
