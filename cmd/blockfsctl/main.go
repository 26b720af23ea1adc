// Command blockfsctl is a minimal line-oriented REPL over one in-process
// store, for interactive exploration. It parses commands only; all
// behavior comes from the store package.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blockfs-go/blockfs/internal/hexdump"
	"github.com/blockfs-go/blockfs/store"
)

func main() {
	blockSize := flag.Uint64("block-size", 4096, "bytes per block")
	superBlockSize := flag.Uint64("super-block-size", 4096, "blocks per super-block")
	superBlockCount := flag.Uint64("super-block-count", 16, "number of super-blocks")
	flag.Parse()

	s, err := store.New(store.Params{
		BlockSize:       *blockSize,
		SuperBlockSize:  *superBlockSize,
		SuperBlockCount: *superBlockCount,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "blockfsctl:", err)
		os.Exit(1)
	}

	fmt.Printf("blockfsctl: %d descriptors, %d blocks, %d bytes total\n",
		s.Header().DescriptorCount(), s.BlockCount(), s.TotalSize())
	fmt.Println("commands: create <i> | delete <i> | resize <i> <bytes> | dump <i> <k> | ls | payload | quit")

	repl(s, os.Stdin, os.Stdout)
}

func repl(s *store.Store, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "create":
			runCreate(s, out, args)
		case "delete":
			runDelete(s, out, args)
		case "resize":
			runResize(s, out, args)
		case "dump":
			runDump(s, out, args)
		case "ls":
			runList(s, out)
		case "payload":
			fmt.Fprintf(out, "%d/%d blocks\n", s.Payload(), s.BlockCount())
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(out, "unknown command %q\n", cmd)
		}
	}
}

func parseIndex(args []string) (uint64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing descriptor index")
	}
	return strconv.ParseUint(args[0], 10, 64)
}

func runCreate(s *store.Store, out *os.File, args []string) {
	i, err := parseIndex(args)
	if err != nil {
		fmt.Fprintln(out, "create:", err)
		return
	}
	h, err := s.FileAt(i)
	if err != nil {
		fmt.Fprintln(out, "create:", err)
		return
	}
	if err := s.Create(h); err != nil {
		fmt.Fprintln(out, "create:", err)
		return
	}
	fmt.Fprintf(out, "created %d\n", i)
}

func runDelete(s *store.Store, out *os.File, args []string) {
	i, err := parseIndex(args)
	if err != nil {
		fmt.Fprintln(out, "delete:", err)
		return
	}
	h, err := s.FileAt(i)
	if err != nil {
		fmt.Fprintln(out, "delete:", err)
		return
	}
	if err := s.Delete(h); err != nil {
		fmt.Fprintln(out, "delete:", err)
		return
	}
	fmt.Fprintf(out, "deleted %d\n", i)
}

func runResize(s *store.Store, out *os.File, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "resize: usage: resize <i> <bytes>")
		return
	}
	i, err := parseIndex(args)
	if err != nil {
		fmt.Fprintln(out, "resize:", err)
		return
	}
	bytes, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Fprintln(out, "resize:", err)
		return
	}
	h, err := s.FileAt(i)
	if err != nil {
		fmt.Fprintln(out, "resize:", err)
		return
	}
	if err := s.Resize(h, bytes); err != nil {
		fmt.Fprintln(out, "resize:", err)
		return
	}
	fmt.Fprintf(out, "resized %d to %d bytes\n", i, bytes)
}

func runDump(s *store.Store, out *os.File, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "dump: usage: dump <i> <k>")
		return
	}
	i, err := parseIndex(args)
	if err != nil {
		fmt.Fprintln(out, "dump:", err)
		return
	}
	k, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Fprintln(out, "dump:", err)
		return
	}
	h, err := s.FileAt(i)
	if err != nil {
		fmt.Fprintln(out, "dump:", err)
		return
	}
	b, err := s.BlockAt(h, k)
	if err != nil {
		fmt.Fprintln(out, "dump:", err)
		return
	}
	fmt.Fprint(out, hexdump.Dump(b, 16))
}

func runList(s *store.Store, out *os.File) {
	for _, h := range s.ListLive() {
		size, _ := s.Size(h)
		fmt.Fprintf(out, "%d\t%d bytes\n", h.Index(), size)
	}
}
