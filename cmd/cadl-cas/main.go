// cadl-cas is a minimal CLI over the byte-level payload stores: put/get/has
// raw canonical payloads and export/import deterministic bundles.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/cadl/store"
	"xdao.co/cadl/store/bundle"
	"xdao.co/cadl/store/registry"

	_ "xdao.co/cadl/store/grpcstore"
	_ "xdao.co/cadl/store/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "put":
		return cmdPut(args[1:], out, errOut)
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "has":
		return cmdHas(args[1:], out, errOut)
	case "export":
		return cmdExport(args[1:], out, errOut)
	case "import":
		return cmdImport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "cadl-cas: payload store tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cadl-cas put --backend localfs --localfs-dir <dir> <file>")
	fmt.Fprintln(w, "  cadl-cas get --backend localfs --localfs-dir <dir> --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  cadl-cas has --backend localfs --localfs-dir <dir> --cid <cid>")
	fmt.Fprintln(w, "  cadl-cas export --backend localfs --localfs-dir <dir> --cid <cid> [--cid ...] --out <file>")
	fmt.Fprintln(w, "  cadl-cas import --backend localfs --localfs-dir <dir> --in <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "gRPC backend:")
	fmt.Fprintln(w, "  cadl-cas put --backend grpc --grpc-target <host:port> <file>")
	fmt.Fprintln(w, "  cadl-cas get --backend grpc --grpc-target <host:port> --cid <cid> [--out <file>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - grpc backend talks to cadl-casd (or any CAS gRPC server)")
	fmt.Fprintln(w, "  - blocks are canonical payload bytes (CIDv1 dag-json + sha2-256)")
}

type commonFlags struct {
	backend      string
	listBackends bool
}

func (c *commonFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "localfs", "CAS backend name")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	registry.RegisterFlags(fs, registry.UsageCLI)
}

func (c *commonFlags) openCAS() (store.CAS, func() error, error) {
	return registry.Open(c.backend, registry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range registry.List(registry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdPut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: cadl-cas put [common flags] <file>")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, err := cas.Put(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStr string
	var outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: cadl-cas get [common flags] --cid <cid> [--out <file>]")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, store.ErrInvalidCID)
		return 1
	}

	b, err := cas.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdHas(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("has", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStr string
	fs.StringVar(&cidStr, "cid", "", "CID to check")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, store.ErrInvalidCID)
		return 1
	}
	if cas.Has(id) {
		_, _ = fmt.Fprintln(out, "true")
		return 0
	}
	_, _ = fmt.Fprintln(out, "false")
	return 1
}

func cmdExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cids multiString
	var outPath string
	fs.Var(&cids, "cid", "CID to export (repeatable)")
	fs.StringVar(&outPath, "out", "", "Output bundle file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if len(cids) == 0 || outPath == "" {
		fmt.Fprintln(errOut, "usage: cadl-cas export [common flags] --cid <cid> [--cid ...] --out <file>")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	ids := make([]cid.Cid, 0, len(cids))
	for _, s := range cids {
		id, err := cid.Decode(s)
		if err != nil {
			fmt.Fprintln(errOut, store.ErrInvalidCID)
			return 1
		}
		ids = append(ids, id)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(errOut, "create %s: %v\n", outPath, err)
		return 1
	}
	defer f.Close()

	if err := bundle.Export(f, cas, ids, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var inPath string
	fs.StringVar(&inPath, "in", "", "Input bundle file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if inPath == "" {
		fmt.Fprintln(errOut, "usage: cadl-cas import [common flags] --in <file>")
		return 2
	}

	cas, closeFn, err := common.openCAS()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(errOut, "open %s: %v\n", inPath, err)
		return 1
	}
	defer f.Close()

	if err := bundle.Import(f, cas); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

type multiString []string

func (m *multiString) String() string { return strings.Join(*m, ",") }

func (m *multiString) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("empty value")
	}
	*m = append(*m, v)
	return nil
}
