package testsupport

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// EXIF tag identifiers used by the fixture builders.
const (
	TagDateTime          uint16 = 0x0132
	TagExifIFDPointer    uint16 = 0x8769
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004
)

// ExifDates holds the raw ASCII values written into a fixture. Empty fields
// are omitted from the generated block.
type ExifDates struct {
	DateTimeOriginal  string
	DateTime          string
	DateTimeDigitized string
}

type asciiEntry struct {
	tag   uint16
	value string
}

// TIFFBlock builds a little-endian TIFF structure carrying the requested
// timestamps: DateTime in IFD0 and the other two in the Exif sub-IFD.
func TIFFBlock(dates ExifDates) []byte {
	var ifd0, exifIFD []asciiEntry
	if dates.DateTime != "" {
		ifd0 = append(ifd0, asciiEntry{TagDateTime, dates.DateTime})
	}
	if dates.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, asciiEntry{TagDateTimeOriginal, dates.DateTimeOriginal})
	}
	if dates.DateTimeDigitized != "" {
		exifIFD = append(exifIFD, asciiEntry{TagDateTimeDigitized, dates.DateTimeDigitized})
	}

	ifd0Count := len(ifd0)
	if len(exifIFD) > 0 {
		ifd0Count++
	}

	const ifd0Offset = 8
	ifdSize := func(n int) int { return 2 + 12*n + 4 }
	exifOffset := ifd0Offset + ifdSize(ifd0Count)
	dataOffset := exifOffset
	if len(exifIFD) > 0 {
		dataOffset += ifdSize(len(exifIFD))
	}

	var data bytes.Buffer
	type entry struct {
		tag, typ    uint16
		count       uint32
		valueOrAddr [4]byte
	}
	asciiToEntry := func(e asciiEntry) entry {
		raw := append([]byte(e.value), 0)
		out := entry{tag: e.tag, typ: 2, count: uint32(len(raw))}
		if len(raw) <= 4 {
			copy(out.valueOrAddr[:], raw)
			return out
		}
		binary.LittleEndian.PutUint32(out.valueOrAddr[:], uint32(dataOffset+data.Len()))
		data.Write(raw)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
		return out
	}

	var ifd0Entries, exifEntries []entry
	for _, e := range ifd0 {
		ifd0Entries = append(ifd0Entries, asciiToEntry(e))
	}
	for _, e := range exifIFD {
		exifEntries = append(exifEntries, asciiToEntry(e))
	}
	if len(exifIFD) > 0 {
		ptr := entry{tag: TagExifIFDPointer, typ: 4, count: 1}
		binary.LittleEndian.PutUint32(ptr.valueOrAddr[:], uint32(exifOffset))
		ifd0Entries = append(ifd0Entries, ptr)
	}
	sort.Slice(ifd0Entries, func(i, j int) bool { return ifd0Entries[i].tag < ifd0Entries[j].tag })
	sort.Slice(exifEntries, func(i, j int) bool { return exifEntries[i].tag < exifEntries[j].tag })

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, binary.LittleEndian, uint16(42))
	_ = binary.Write(&out, binary.LittleEndian, uint32(ifd0Offset))

	writeIFD := func(entries []entry) {
		_ = binary.Write(&out, binary.LittleEndian, uint16(len(entries)))
		for _, e := range entries {
			_ = binary.Write(&out, binary.LittleEndian, e.tag)
			_ = binary.Write(&out, binary.LittleEndian, e.typ)
			_ = binary.Write(&out, binary.LittleEndian, e.count)
			out.Write(e.valueOrAddr[:])
		}
		_ = binary.Write(&out, binary.LittleEndian, uint32(0))
	}
	writeIFD(ifd0Entries)
	if len(exifEntries) > 0 {
		writeIFD(exifEntries)
	}
	out.Write(data.Bytes())
	return out.Bytes()
}

// JPEGWithEXIF wraps a TIFF block in a minimal JPEG stream with an APP1
// segment.
func JPEGWithEXIF(tiff []byte) []byte {
	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(2+6+len(tiff)))
	out.WriteString("Exif\x00\x00")
	out.Write(tiff)
	out.Write([]byte{0xFF, 0xD9})
	return out.Bytes()
}

// PlainJPEG returns a minimal JPEG stream without any APP1 segment.
func PlainJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x00, 0x00, 0xFF, 0xD9}
}

// HEICWithEXIF embeds a TIFF block the way a HEIF "Exif" item stores it: a
// four byte header offset followed by the Exif marker and the TIFF data,
// placed after an ftyp box.
func HEICWithEXIF(tiff []byte) []byte {
	var out bytes.Buffer
	out.Write(heicPrefix())
	_ = binary.Write(&out, binary.BigEndian, uint32(6))
	out.WriteString("Exif\x00\x00")
	out.Write(tiff)
	return out.Bytes()
}

// PlainHEIC returns an ftyp box with no Exif item.
func PlainHEIC() []byte {
	return heicPrefix()
}

func heicPrefix() []byte {
	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, uint32(24))
	out.WriteString("ftypheic")
	_ = binary.Write(&out, binary.BigEndian, uint32(0))
	out.WriteString("mif1heic")
	return out.Bytes()
}
