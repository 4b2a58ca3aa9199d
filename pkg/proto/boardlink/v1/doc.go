// Package boardlinkv1 contains the wire messages of boardlink.proto.
package boardlinkv1

//go:generate protoc --go_out=paths=source_relative:. boardlink.proto
