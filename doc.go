// Package redcanvas decodes a remote-display protocol's wire-format
// pixel payloads into canonical raster surfaces.
//
// A Canvas dispatches image references by descriptor type: uncompressed
// bitmaps of arbitrary bit depth go through the pixel-format converter,
// compressed payloads go through pluggable Quic/Lz/Glz codec engines,
// and previously decoded surfaces are fetched from a session image
// cache. The package also derives alpha masks (with a lazily computed,
// race-safe inverse cache), composes raster glyph strings into mask
// surfaces, and scales decoded surfaces.
//
// All decode calls are synchronous and fail fast: wire data originates
// from an untrusted peer, and any inconsistency aborts the current call
// with a typed error rather than producing a partially correct frame.
package redcanvas
