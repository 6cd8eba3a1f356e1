// Package codec converts wrapped values into the compressed byte form kept by
// the storage backends and back again.
//
// A codec is the combination of two independent stages:
//
//   - Serializer: produces the uncompressed wire form of a value.Wrapped.
//     Three implementations are provided: a compact custom binary format
//     (default), json and gob.
//   - Compressor: a lossless general purpose byte codec applied to the
//     serialized form. lz4 (frame format, default), zstd and snappy are
//     available.
//
// The only externally visible property of a codec is its round trip
// guarantee: Decompress(Compress(w)) is value-equal to w for every wrapped
// value, including values without expiration and all five value kinds.
// Corrupted input never decodes to a silent default, Decompress returns an
// error instead.
//
// The configuration of a codec (Config) is recorded in snapshots so a
// snapshot can always be read back with the codec that produced it.
package codec
