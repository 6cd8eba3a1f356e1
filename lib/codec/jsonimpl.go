package codec

import (
	"encoding/json"
	"github.com/ValentinKolb/eKV/lib/value"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() ISerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the ISerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.ISerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(w value.Wrapped) ([]byte, error) {
	return json.Marshal(toWire(w))
}

func (j jsonSerializerImpl) Deserialize(b []byte, w *value.Wrapped) error {
	var in wireWrapped
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*w = fromWire(in)
	return nil
}
