package codec

import (
	"bytes"
	"encoding/gob"
	"github.com/ValentinKolb/eKV/lib/value"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() ISerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the ISerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ISerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(w value.Wrapped) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(toWire(w)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, w *value.Wrapped) error {
	var in wireWrapped
	dec := gob.NewDecoder(bytes.NewBuffer(b))
	if err := dec.Decode(&in); err != nil {
		return err
	}
	*w = fromWire(in)
	return nil
}
