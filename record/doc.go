// Package record persists per-shot trace gathers.
//
// Each shot is written to its own blob named
//
//	{file_name}_{xsrc}_{ysrc}.segy
//
// where xsrc/ysrc are the first source coordinate of the shot. The file
// body is a compact self-describing container rather than SEG-Y rev1:
//
//	magic "WVRC" | version u16 | compression u8 | codec name (u8 len + bytes)
//	header length u32 | header (codec-encoded Header)
//	payload block: [uncompressed u32][compressed u32][bytes]
//	crc32c u32 over everything above
//
// The payload is the trace-major float32 gather in little-endian order, so
// a written record reloads bit for bit.
package record
