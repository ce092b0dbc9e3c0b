// Package metadata reads embedded capture timestamps from photo containers.
//
// JPEG files are decoded with goexif; HEIC files have their EXIF item located
// inside the HEIF container and decoded with go-exif. Both paths consult the
// same ordered tag list (DateTimeOriginal, DateTime, DateTimeDigitized) and
// the fixed EXIF timestamp layout. A missing or unreadable container is an
// expected outcome reported as "not found"; only failures to read the file
// itself, or a decoder crash on a corrupt container, are returned as errors.
package metadata
