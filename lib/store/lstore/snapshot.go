package lstore

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/ValentinKolb/eKV/lib/codec"
	"github.com/ValentinKolb/eKV/lib/db"
	"github.com/ValentinKolb/eKV/lib/db/engines"
	"github.com/ValentinKolb/eKV/lib/index"
	"github.com/ValentinKolb/eKV/lib/value"
)

// --------------------------------------------------------------------------
// Snapshot Format
// --------------------------------------------------------------------------
//
// All integers are little endian.
//
//	magic        [8]byte  "EKVSNAP\x00"
//	version      u8
//	kind         u8       db.Kind
//	serializer   u8
//	compression  u8
//	entry count  u64
//	entries      (key len u32, key, data len u32, compressed data) sorted by key
//	bucket count u64
//	buckets      (value len u32, canonical value, key count u32, (key len u32, key)...) sorted by value
//
// Expiration instants are stored inside the compressed data as absolute wall
// clock time, so a loaded snapshot keeps the original deadlines.

const (
	snapshotMagic   = "EKVSNAP\x00"
	snapshotVersion = 1
	maxFieldLen     = 1 << 30
)

// errSnapshotFormat marks snapshots that are not parseable
var errSnapshotFormat = errors.New("invalid snapshot")

var serializerCodes = map[codec.SerializerType]uint8{
	codec.SerializerBinary: 1,
	codec.SerializerJSON:   2,
	codec.SerializerGOB:    3,
}

var compressionCodes = map[codec.CompressionType]uint8{
	codec.CompressionLZ4:    1,
	codec.CompressionZstd:   2,
	codec.CompressionSnappy: 3,
}

func lookupCode[T comparable](codes map[T]uint8, code uint8) (T, bool) {
	for name, c := range codes {
		if c == code {
			return name, true
		}
	}
	var zero T
	return zero, false
}

// snapshotState is the decoded content of a snapshot
type snapshotState struct {
	backend db.Backend
	idx     *index.Index
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

type rawEntry struct {
	key  string
	data []byte
}

// writeSnapshot encodes backend and idx to w.
// The caller must hold the read locks of both.
func writeSnapshot(w io.Writer, backend db.Backend, idx *index.Index) error {
	cfg := backend.Codec().Config()
	serializer, ok := serializerCodes[cfg.Serializer]
	if !ok {
		return fmt.Errorf("%w: unknown serializer %s", errSnapshotFormat, cfg.Serializer)
	}
	compression, ok := compressionCodes[cfg.Compression]
	if !ok {
		return fmt.Errorf("%w: unknown compression %s", errSnapshotFormat, cfg.Compression)
	}

	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	header := []byte(snapshotMagic)
	header = append(header, snapshotVersion, uint8(backend.Kind()), serializer, compression)
	if _, err := bw.Write(header); err != nil {
		return err
	}

	// entries are sorted so that equal states produce equal files for every backend
	entries := make([]rawEntry, 0, backend.Len())
	backend.RangeRaw(func(key string, data []byte) bool {
		entries = append(entries, rawEntry{key: key, data: data})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})

	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeBytes(bw, []byte(e.key)); err != nil {
			return err
		}
		if err := writeBytes(bw, e.data); err != nil {
			return err
		}
	}

	buckets := idx.Buckets()
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	slices.Sort(names)

	if err := binary.Write(bw, binary.LittleEndian, uint64(len(names))); err != nil {
		return err
	}
	for _, name := range names {
		if err := writeBytes(bw, []byte(name)); err != nil {
			return err
		}
		keys := buckets[name]
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(keys))); err != nil {
			return err
		}
		for _, key := range keys {
			if err := writeBytes(bw, []byte(key)); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// writeSnapshotFile writes the snapshot to a temp file next to path, syncs it
// and renames it over path
func writeSnapshotFile(path string, backend db.Backend, idx *index.Index) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return cause
	}

	if err := writeSnapshot(tmp, backend, idx); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// readSnapshot decodes a snapshot and checks that the stored index matches
// the index rebuilt from the entries
func readSnapshot(r io.Reader) (*snapshotState, error) {
	br := bufio.NewReaderSize(r, 1024*1024)

	header := make([]byte, len(snapshotMagic)+4)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", errSnapshotFormat, err)
	}
	if string(header[:len(snapshotMagic)]) != snapshotMagic {
		return nil, fmt.Errorf("%w: magic number mismatch", errSnapshotFormat)
	}
	fields := header[len(snapshotMagic):]
	if fields[0] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (expected %d)", errSnapshotFormat, fields[0], snapshotVersion)
	}

	kind := db.Kind(fields[1])
	serializer, ok := lookupCode(serializerCodes, fields[2])
	if !ok {
		return nil, fmt.Errorf("%w: unknown serializer code %d", errSnapshotFormat, fields[2])
	}
	compression, ok := lookupCode(compressionCodes, fields[3])
	if !ok {
		return nil, fmt.Errorf("%w: unknown compression code %d", errSnapshotFormat, fields[3])
	}

	c, err := codec.New(codec.Config{Serializer: serializer, Compression: compression})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSnapshotFormat, err)
	}
	backend, err := engines.New(kind, c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSnapshotFormat, err)
	}

	var entryCount uint64
	if err := binary.Read(br, binary.LittleEndian, &entryCount); err != nil {
		return nil, fmt.Errorf("%w: reading entry count: %v", errSnapshotFormat, err)
	}
	for i := uint64(0); i < entryCount; i++ {
		key, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading key of entry %d: %v", errSnapshotFormat, i, err)
		}
		data, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading data of entry %d: %v", errSnapshotFormat, i, err)
		}
		backend.InsertRaw(string(key), data)
	}

	var bucketCount uint64
	if err := binary.Read(br, binary.LittleEndian, &bucketCount); err != nil {
		return nil, fmt.Errorf("%w: reading bucket count: %v", errSnapshotFormat, err)
	}
	buckets := make(map[string][]string)
	for i := uint64(0); i < bucketCount; i++ {
		name, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading bucket %d: %v", errSnapshotFormat, i, err)
		}
		var keyCount uint32
		if err := binary.Read(br, binary.LittleEndian, &keyCount); err != nil {
			return nil, fmt.Errorf("%w: reading bucket %d: %v", errSnapshotFormat, i, err)
		}
		keys := make([]string, 0, min(keyCount, 1024))
		for j := uint32(0); j < keyCount; j++ {
			key, err := readBytes(br)
			if err != nil {
				return nil, fmt.Errorf("%w: reading bucket %d: %v", errSnapshotFormat, i, err)
			}
			keys = append(keys, string(key))
		}
		buckets[string(name)] = keys
	}

	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after index", errSnapshotFormat)
	}

	// every entry must decode and the index must describe exactly those entries
	rebuilt := index.New()
	err = backend.Iterate(func(key string, w value.Wrapped) bool {
		rebuilt.Insert(key, w.Value)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("%w: corrupted entry: %v", errSnapshotFormat, err)
	}
	idx := index.FromBuckets(buckets)
	if !idx.Equal(rebuilt) {
		return nil, fmt.Errorf("%w: index does not match the stored entries", errSnapshotFormat)
	}

	return &snapshotState{backend: backend, idx: idx}, nil
}

func readBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxFieldLen {
		return nil, fmt.Errorf("field length %d exceeds limit", n)
	}
	// the buffer grows with the data actually read, a forged length cannot force a large allocation
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// readSnapshotFile opens path and decodes it. Open failures are returned as is,
// decode failures wrap errSnapshotFormat.
func readSnapshotFile(path string) (*snapshotState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readSnapshot(f)
}
