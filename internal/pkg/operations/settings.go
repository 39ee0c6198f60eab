package operations

import (
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// MessageEncoderSettings carries the encoding configuration of the caller
// down to the connection. It is not interpreted by the operations themselves.
type MessageEncoderSettings struct {
	// Registry used to encode criteria and documents, the driver default when nil
	Registry *bsoncodec.Registry
}
