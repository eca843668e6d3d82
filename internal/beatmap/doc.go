// Package beatmap reads the metadata section of osu! beatmap files and turns it
// into title records for marker validation.
//
// Only the file header and the [Metadata] section are decoded; parsing stops at
// the section that follows [Metadata]. Files may be UTF-8 with or without a BOM,
// or UTF-16 with a BOM.
package beatmap
