// Package rpcserver exposes CompileService (compile.proto) over gRPC: the
// daemon counterpart to an editor-integration surface, letting a client
// submit FeatherScala source text and get back generated C plus
// diagnostics without a process start-up per request.
//
// Rather than protoc-generated stubs, the service descriptor is parsed at
// server start from compile.proto with jhump/protoreflect/desc/protoparse
// and served through grpc's generic ServiceDesc with dynamic.Message
// values — the exact runtime-descriptor technique the teacher's
// internal/evaluator/builtins_grpc.go uses to expose a gRPC service
// without generated code.
package rpcserver

import (
	"context"
	"embed"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/featherscala/fsc/internal/analyzer"
	"github.com/featherscala/fsc/internal/codegen"
	"github.com/featherscala/fsc/internal/diagnostics"
	"github.com/featherscala/fsc/internal/parser"
)

//go:embed compile.proto
var protoFS embed.FS

// Server implements CompileService against an in-process compile pipeline.
type Server struct {
	grpcServer *grpc.Server
	sd         *desc.ServiceDescriptor
}

// New parses compile.proto and constructs a Server ready to Serve.
func New() (*Server, error) {
	contents, err := protoFS.ReadFile("compile.proto")
	if err != nil {
		return nil, fmt.Errorf("reading embedded compile.proto: %w", err)
	}

	p := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			"compile.proto": string(contents),
		}),
	}
	fds, err := p.ParseFiles("compile.proto")
	if err != nil {
		return nil, fmt.Errorf("parsing compile.proto: %w", err)
	}

	var sd *desc.ServiceDescriptor
	for _, svc := range fds[0].GetServices() {
		if svc.GetName() == "CompileService" {
			sd = svc
		}
	}
	if sd == nil {
		return nil, fmt.Errorf("compile.proto: CompileService not found")
	}

	s := &Server{sd: sd}
	s.grpcServer = grpc.NewServer()
	s.grpcServer.RegisterService(s.serviceDesc(), s)
	return s, nil
}

// serviceDesc builds the grpc.ServiceDesc for CompileService from the
// parsed descriptor, one grpc.MethodDesc per unary RPC.
func (s *Server) serviceDesc() *grpc.ServiceDesc {
	gd := &grpc.ServiceDesc{
		ServiceName: s.sd.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    "compile.proto",
	}
	for _, method := range s.sd.GetMethods() {
		md := method
		gd.Methods = append(gd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				return srv.(*Server).handle(ctx, md, dec)
			},
		})
	}
	return gd
}

// handle decodes the request into a dynamic.Message, runs the compile
// pipeline, and encodes the result into a dynamic.Message of the RPC's
// declared output type.
func (s *Server) handle(_ context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	in := dynamic.NewMessage(md.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}

	file, _ := in.TryGetFieldByName("file")
	source, _ := in.TryGetFieldByName("source")
	fileStr, _ := file.(string)
	sourceStr, _ := source.(string)
	if fileStr == "" {
		fileStr = "<rpc>"
	}

	out := dynamic.NewMessage(md.GetOutputType())
	cSource, diags := compile(fileStr, sourceStr)

	out.SetFieldByName("ok", len(diags) == 0)
	out.SetFieldByName("c_source", cSource)

	diagType := findDiagnosticType(md.GetOutputType())
	for _, d := range diags {
		dm := dynamic.NewMessage(diagType)
		dm.SetFieldByName("message", d.message)
		dm.SetFieldByName("line", int32(d.line))
		dm.SetFieldByName("column", int32(d.column))
		out.AddRepeatedFieldByName("diagnostics", dm)
	}

	return out, nil
}

func findDiagnosticType(md *desc.MessageDescriptor) *desc.MessageDescriptor {
	for _, fd := range md.GetFields() {
		if fd.GetName() == "diagnostics" {
			return fd.GetMessageType()
		}
	}
	return nil
}

type rpcDiag struct {
	message      string
	line, column int
}

// compile runs the lexer/parser/analyzer/codegen pipeline in-process and
// flattens any failure into the wire Diagnostic shape.
func compile(file, source string) (string, []rpcDiag) {
	prog, errs := parser.Parse(file, source)
	if len(errs) > 0 {
		diags := make([]rpcDiag, len(errs))
		for i, e := range errs {
			diags[i] = rpcDiag{message: e.Error()}
		}
		return "", diags
	}

	a := analyzer.New()
	if err := a.Check(prog); err != nil {
		return "", []rpcDiag{diagToRPC(err)}
	}

	cSource, err := codegen.Generate(prog, a.Info)
	if err != nil {
		return "", []rpcDiag{diagToRPC(err)}
	}
	return cSource, nil
}

func diagToRPC(err error) rpcDiag {
	switch e := err.(type) {
	case *diagnostics.TypeError:
		return rpcDiag{message: e.Error(), line: e.Span.Start.Line, column: e.Span.Start.Col}
	case *diagnostics.CodeGenError:
		return rpcDiag{message: e.Error(), line: e.Span.Start.Line, column: e.Span.Start.Col}
	default:
		return rpcDiag{message: err.Error()}
	}
}

// GRPCServer returns the underlying *grpc.Server so the daemon can call
// Serve/GracefulStop with a real net.Listener.
func (s *Server) GRPCServer() *grpc.Server { return s.grpcServer }
