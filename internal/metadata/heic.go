package metadata

import (
	"bytes"

	exif "github.com/dsoprea/go-exif/v3"
)

// heifExifMarker precedes the TIFF header inside the HEIF "Exif" item.
var heifExifMarker = []byte("Exif\x00\x00")

type flatTags map[string]string

func (f flatTags) lookup(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

// decodeHEIC locates the EXIF item payload in a HEIF container and decodes
// it. When the item marker is absent the whole stream is searched for a TIFF
// header.
func decodeHEIC(data []byte) (tagSource, error) {
	if idx := bytes.Index(data, heifExifMarker); idx >= 0 {
		data = data[idx+len(heifExifMarker):]
	}
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		return nil, err
	}
	entries, _, err := exif.GetFlatExifData(raw, &exif.ScanOptions{})
	if err != nil {
		return nil, err
	}

	tags := make(flatTags, len(entries))
	for _, entry := range entries {
		if _, seen := tags[entry.TagName]; seen {
			continue
		}
		if s, ok := entry.Value.(string); ok {
			tags[entry.TagName] = s
			continue
		}
		if entry.FormattedFirst != "" {
			tags[entry.TagName] = entry.FormattedFirst
		}
	}
	return tags, nil
}
