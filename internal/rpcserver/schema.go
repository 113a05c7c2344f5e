package rpcserver

import (
	"bytes"
	"fmt"

	"github.com/jhump/protoreflect/v2/protoprint"
	"google.golang.org/protobuf/reflect/protodesc"
)

// DumpSchema renders the service's parsed descriptor back to .proto text,
// as a debugging aid; cmd/fscd has no flag that calls it. Bridges the v1 desc.FileDescriptor
// this package parses compile.proto into through its FileDescriptorProto
// and the v2 printer, which operates on the standard
// google.golang.org/protobuf descriptor types rather than v1's.
func (s *Server) DumpSchema() (string, error) {
	fileProto := s.sd.GetFile().AsFileDescriptorProto()
	stdFile, err := protodesc.NewFile(fileProto, nil)
	if err != nil {
		return "", fmt.Errorf("converting descriptor for printing: %w", err)
	}

	printer := &protoprint.Printer{}
	var buf bytes.Buffer
	if err := printer.PrintProtoFile(stdFile, &buf); err != nil {
		return "", fmt.Errorf("printing schema: %w", err)
	}
	return buf.String(), nil
}
