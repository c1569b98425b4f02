// Package rpc holds the wire contract of the orgwidget.v1.StorefrontService
// gRPC service. Requests and responses are google.protobuf.Struct values
// carrying the same JSON documents the HTTP API serves, so the service needs
// no generated stubs.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "orgwidget.v1.StorefrontService"

// Method names.
const (
	MethodGetSession           = "GetSession"
	MethodCreateSession        = "CreateSession"
	MethodUpdateSessionProfile = "UpdateSessionProfile"
	MethodCheckUserPermission  = "CheckUserPermission"
	MethodGetOrganization      = "GetOrganization"
	MethodGetCostCenter        = "GetCostCenter"
	MethodHealth               = "Health"
)

// Request field names.
const (
	FieldSessionID     = "session_id"
	FieldEmail         = "email"
	FieldAuthenticated = "authenticated"
	FieldStatus        = "status"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Encode converts any JSON-marshalable value into a Struct.
// A nil value encodes as an empty Struct.
func Encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if bytes.Equal(data, []byte("null")) {
		return out, nil
	}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encoding %T as struct: %w", v, err)
	}
	return out, nil
}

// Decode populates v from a Struct.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decoding struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding struct into %T: %w", v, err)
	}
	return nil
}

// StringField returns a string field of a request Struct, or "".
func StringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[name].GetStringValue()
}

// BoolField returns a bool field of a request Struct, or false.
func BoolField(s *structpb.Struct, name string) bool {
	if s == nil {
		return false
	}
	return s.GetFields()[name].GetBoolValue()
}
