package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

import (
	log "github.com/sirupsen/logrus"
	"github.com/timtadh/getopt"
)

import (
	storage "github.com/tl8roy/embedded-storage"
	"github.com/tl8roy/embedded-storage/mmapdev"
	"github.com/tl8roy/embedded-storage/nb"
)

var ErrorCodes map[string]int = map[string]int{
	"usage":   0,
	"version": 2,
	"opts":    3,
	"badint":  5,
	"badfile": 6,
	"device":  7,
}

var UsageMessage string = "storage-img --help"
var ExtendedMessage string = `
storage-img -- inspect and patch flash image files through the
               embedded-storage capability contracts

There is a subcommand for each device operation.

Global Options
  -h, --help                view this message
  -p, --page-size=<int>     erase page size in bytes (default 4096)
  -v, --verbose             debug logging

create

  $ storage-img create --size=<int> <image>

  Makes a new image of the given size, fully erased (0xFF). The size
  must be a multiple of the page size.

info

  $ storage-img info <image>

  Prints the device geometry.

dump

  $ storage-img dump [--start=<addr>] [--length=<int>] <image>

  Hex dumps a range of the image (the whole image by default).
  Addresses accept 0x prefixes.

read

  $ storage-img read --addr=<addr> [--length=<int>] <image>

  Reads one or more bytes and prints them as hex.

write

  $ storage-img write --addr=<addr> --data=<hex> <image>

  Writes the given hex bytes at the address.

erase

  $ storage-img erase (--page=<int> | --addr=<addr>) <image>

  Erases one page, by index or by its start address.
`

func Usage(code int) {
	fmt.Fprintln(os.Stderr, UsageMessage)
	if code == 0 {
		fmt.Fprintln(os.Stdout, ExtendedMessage)
		code = ErrorCodes["usage"]
	} else {
		fmt.Fprintln(os.Stderr, "Try -h or --help for help")
	}
	os.Exit(code)
}

func ParseUint(str string) uint64 {
	i, err := strconv.ParseUint(str, 0, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing '%v' expected an unsigned int\n", str)
		Usage(ErrorCodes["badint"])
	}
	return i
}

func AssertFile(fname string) string {
	fname = path.Clean(fname)
	fi, err := os.Stat(fname)
	if err != nil && os.IsNotExist(err) {
		return fname
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		Usage(ErrorCodes["badfile"])
	} else if fi.IsDir() {
		fmt.Fprintf(os.Stderr, "Passed in file was a directory, %s\n", fname)
		Usage(ErrorCodes["badfile"])
	}
	return fname
}

// all device traffic goes through the capability contracts, polling
// through would-block the way an embedded consumer would.
func must(what string, err error) {
	if err != nil {
		log.WithField("op", what).Error(err)
		os.Exit(ErrorCodes["device"])
	}
}

func openImage(args []string, pagesize uint64) *mmapdev.Image {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Expected exactly one image path")
		Usage(ErrorCodes["opts"])
	}
	img, err := mmapdev.Open(AssertFile(args[0]), pagesize)
	must("open", err)
	total, err := nb.Await(img.TotalSize)
	must("total size", err)
	log.WithFields(log.Fields{
		"path": args[0],
		"size": total.Value(),
		"page": pagesize,
	}).Debug("mapped image")
	return img
}

func Create(pagesize uint64, argv []string) {
	args, optargs, err := getopt.GetOpt(argv, "s:", []string{"size="})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}
	var size uint64
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-s", "--size":
			size = ParseUint(oa.Arg())
		}
	}
	if size == 0 || len(args) != 1 {
		fmt.Fprintln(os.Stderr, "create needs --size and an image path")
		Usage(ErrorCodes["opts"])
	}
	img, err := mmapdev.Create(AssertFile(args[0]), size, pagesize)
	must("create", err)
	must("close", img.Close())
	log.WithFields(log.Fields{"path": args[0], "size": size}).Info("created image")
}

func Info(pagesize uint64, argv []string) {
	img := openImage(argv, pagesize)
	defer func() { must("close", img.Close()) }()
	start, err := nb.Await(img.StartAddress)
	must("start address", err)
	total, err := nb.Await(img.TotalSize)
	must("total size", err)
	ps, err := nb.Await(func() (storage.AddressOffset[uint64], error) {
		return img.PageSize(start)
	})
	must("page size", err)
	fmt.Printf("start:     %#x\n", start.Value())
	fmt.Printf("size:      %#x (%d bytes)\n", total.Value(), total.Value())
	fmt.Printf("page size: %#x (%d bytes)\n", ps.Value(), ps.Value())
	fmt.Printf("pages:     %d\n", total.Value()/ps.Value())
}

// defaultDumpLength is the byte count from at to the end of the
// image. The guard keeps a start past the end from underflowing the
// unsigned subtraction into a multi-exabyte allocation.
func defaultDumpLength(at, total uint64) (uint64, bool) {
	if at > total {
		return 0, false
	}
	return total - at, true
}

func Dump(pagesize uint64, argv []string) {
	args, optargs, err := getopt.GetOpt(argv, "s:l:", []string{"start=", "length="})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}
	var at, length uint64
	haveLength := false
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-s", "--start":
			at = ParseUint(oa.Arg())
		case "-l", "--length":
			length = ParseUint(oa.Arg())
			haveLength = true
		}
	}
	img := openImage(args, pagesize)
	defer func() { must("close", img.Close()) }()
	if !haveLength {
		total, err := nb.Await(img.TotalSize)
		must("total size", err)
		var ok bool
		length, ok = defaultDumpLength(at, total.Value())
		if !ok {
			fmt.Fprintf(os.Stderr, "Start %#x is past the end of the image (%#x bytes)\n", at, total.Value())
			Usage(ErrorCodes["badint"])
		}
	}
	buf := make([]byte, length)
	must("read", nb.Block(func() error {
		return img.ReadWords(storage.Addr(at), buf)
	}))
	for off := 0; off < len(buf); off += 16 {
		end := off + 16
		if end > len(buf) {
			end = len(buf)
		}
		fmt.Printf("%08x  % x\n", at+uint64(off), buf[off:end])
	}
}

func Read(pagesize uint64, argv []string) {
	args, optargs, err := getopt.GetOpt(argv, "a:l:", []string{"addr=", "length="})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}
	var at uint64
	length := uint64(1)
	haveAddr := false
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-a", "--addr":
			at = ParseUint(oa.Arg())
			haveAddr = true
		case "-l", "--length":
			length = ParseUint(oa.Arg())
		}
	}
	if !haveAddr {
		fmt.Fprintln(os.Stderr, "read needs --addr")
		Usage(ErrorCodes["opts"])
	}
	img := openImage(args, pagesize)
	defer func() { must("close", img.Close()) }()
	buf := make([]byte, length)
	must("read", nb.Block(func() error {
		return img.ReadWords(storage.Addr(at), buf)
	}))
	fmt.Printf("%x\n", buf)
}

func Write(pagesize uint64, argv []string) {
	args, optargs, err := getopt.GetOpt(argv, "a:d:", []string{"addr=", "data="})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}
	var at uint64
	var data []byte
	haveAddr := false
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-a", "--addr":
			at = ParseUint(oa.Arg())
			haveAddr = true
		case "-d", "--data":
			data, err = hex.DecodeString(strings.TrimPrefix(oa.Arg(), "0x"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing '%v' expected hex bytes\n", oa.Arg())
				Usage(ErrorCodes["badint"])
			}
		}
	}
	if !haveAddr || len(data) == 0 {
		fmt.Fprintln(os.Stderr, "write needs --addr and --data")
		Usage(ErrorCodes["opts"])
	}
	img := openImage(args, pagesize)
	defer func() { must("close", img.Close()) }()
	must("write", nb.Block(func() error {
		return img.WriteWords(storage.Addr(at), data)
	}))
	log.WithFields(log.Fields{"addr": at, "bytes": len(data)}).Info("wrote")
}

func Erase(pagesize uint64, argv []string) {
	args, optargs, err := getopt.GetOpt(argv, "p:a:", []string{"page=", "addr="})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}
	var page, at uint64
	havePage := false
	haveAddr := false
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-p", "--page":
			page = ParseUint(oa.Arg())
			havePage = true
		case "-a", "--addr":
			at = ParseUint(oa.Arg())
			haveAddr = true
		}
	}
	if havePage == haveAddr {
		fmt.Fprintln(os.Stderr, "erase needs exactly one of --page or --addr")
		Usage(ErrorCodes["opts"])
	}
	img := openImage(args, pagesize)
	defer func() { must("close", img.Close()) }()
	if havePage {
		must("erase", nb.Block(func() error {
			return img.ErasePage(storage.PageNo(page))
		}))
		log.WithField("page", page).Info("erased")
	} else {
		must("erase", nb.Block(func() error {
			return img.EraseAddress(storage.Addr(at))
		}))
		log.WithField("addr", at).Info("erased")
	}
}

func main() {
	args, optargs, err := getopt.GetOpt(
		os.Args[1:],
		"hp:v",
		[]string{
			"help", "page-size=", "verbose",
		},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		Usage(ErrorCodes["opts"])
	}

	commands := map[string]func(uint64, []string){
		"create": Create,
		"info":   Info,
		"dump":   Dump,
		"read":   Read,
		"write":  Write,
		"erase":  Erase,
	}

	pagesize := uint64(mmapdev.PAGESIZE)
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-h", "--help":
			Usage(0)
		case "-p", "--page-size":
			pagesize = ParseUint(oa.Arg())
		case "-v", "--verbose":
			log.SetLevel(log.DebugLevel)
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag '%v'\n", oa.Opt())
			Usage(ErrorCodes["opts"])
		}
	}

	if len(args) <= 0 {
		fmt.Fprintln(os.Stderr, "Must supply a command, try --help")
		Usage(ErrorCodes["opts"])
	}

	cmd, has := commands[args[0]]
	if !has {
		fmt.Fprintf(os.Stderr, "Command '%v' not supported, try --help\n", args[0])
		Usage(ErrorCodes["opts"])
	}

	cmd(pagesize, args[1:])
}
