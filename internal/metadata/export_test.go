package metadata

import "shoebox/internal/photo"

// SwapDecoderPanic replaces the decoder for format with one that panics with
// value, returning a func that restores the original.
func SwapDecoderPanic(format photo.Format, value any) (restore func()) {
	prev, had := decoders[format]
	decoders[format] = func([]byte) (tagSource, error) { panic(value) }
	return func() {
		if had {
			decoders[format] = prev
			return
		}
		delete(decoders, format)
	}
}
