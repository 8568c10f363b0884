// Command geojson-compact shrinks a GeoJSON file for web serving by
// rounding coordinates and stripping whitespace, optionally writing a
// precompressed .gz companion.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sigmap/photomap/pkg/geojson"
)

func main() {
	var out string
	var decimals int
	var noGzip bool

	flag.StringVar(&out, "o", "", "output file (default: input.min.geojson)")
	flag.IntVar(&decimals, "decimals", geojson.DefaultDecimals, "coordinate precision in decimal places")
	flag.BoolVar(&noGzip, "no-gzip", false, "skip writing the .gz companion file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-o output] [-decimals n] [-no-gzip] input.geojson\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}
	in := flag.Arg(0)

	if out == "" {
		ext := filepath.Ext(in)
		out = strings.TrimSuffix(in, ext) + ".min" + ext
	}

	data, err := os.ReadFile(in)
	if err != nil {
		log.Fatalf("failed to read %s: %v", in, err)
	}

	compacted, err := geojson.Compact(data, decimals)
	if err != nil {
		log.Fatalf("failed to compact %s: %v", in, err)
	}

	if err := geojson.WriteFileAtomic(out, compacted); err != nil {
		log.Fatalf("failed to write %s: %v", out, err)
	}
	log.Printf("wrote %s (%d -> %d bytes)", out, len(data), len(compacted))

	if !noGzip {
		gz := out + ".gz"
		if err := geojson.WriteGzip(gz, compacted); err != nil {
			log.Fatalf("failed to write %s: %v", gz, err)
		}
		log.Printf("wrote %s", gz)
	}
}
