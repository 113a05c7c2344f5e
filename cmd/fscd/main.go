// Command fscd is the compile daemon: it exposes CompileService (see
// internal/rpcserver/compile.proto) over gRPC so editor and CI integrations
// can submit FeatherScala source and get generated C back without paying a
// process start-up cost per compile. The daemon counterpart to the
// teacher's cmd/lsp.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/featherscala/fsc/internal/config"
	"github.com/featherscala/fsc/internal/rpcserver"
	"github.com/featherscala/fsc/internal/session"
)

func main() {
	addr := ":9321"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	sess := session.New()
	fmt.Fprintf(os.Stderr, "fscd %s starting (session %s) on %s\n", config.Version, sess, addr)

	srv, err := rpcserver.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fscd: %s\n", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fscd: %s\n", err)
		os.Exit(1)
	}

	if err := srv.GRPCServer().Serve(lis); err != nil {
		fmt.Fprintf(os.Stderr, "fscd: %s\n", err)
		os.Exit(1)
	}
}
