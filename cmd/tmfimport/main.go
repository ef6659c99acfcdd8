package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"genesis-tmf/internal/exchange"
	"genesis-tmf/internal/objfile"
)

func main() {
	in := flag.String("in", "", "TMF file to import")
	objPath := flag.String("obj", "", "Write the imported scene as OBJ to this path")
	resolve := flag.String("resolve", "positional", "Material resolution: positional or name")
	names := flag.String("names", "", "Comma-separated material names by index, for -resolve name")
	strict := flag.Bool("strict", false, "Reject format versions other than 91")
	verbose := flag.Bool("v", false, "Log sidecar and object details")
	flag.Parse()

	if *in == "" && flag.NArg() == 1 {
		*in = flag.Arg(0)
	}
	if *in == "" {
		fmt.Fprintln(os.Stderr, "Usage: tmfimport -in model.tmf [-obj out.obj] [-resolve positional|name]")
		os.Exit(1)
	}

	res, err := exchange.ParseResolution(*resolve)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opts := exchange.ImportOptions{Strict: *strict, Resolution: res}
	if *names != "" {
		opts.MaterialNames = strings.Split(*names, ",")
	}
	if *verbose {
		opts.Log = os.Stdout
	}

	result, err := exchange.Import(*in, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: version %d, %d objects, %d helpers\n",
		*in, result.Document.Version, len(result.Document.Objects), len(result.Document.Helpers))
	for _, o := range result.Objects {
		mat := "-"
		if o.Material != nil {
			mat = o.Material.Name
		}
		fmt.Printf("  %s: %d vertices, %d triangles, material %d (%s)\n",
			o.Mesh.Name, len(o.Mesh.Vertices), len(o.Mesh.Faces), o.MaterialIndex, mat)
	}
	for _, w := range result.Warnings {
		fmt.Printf("Warning: %v\n", w)
	}
	if len(result.Failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  %v\n", f)
		}
	}

	if *objPath != "" {
		if err := objfile.WriteFile(*objPath, result.Scene); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OBJ: %s\n", *objPath)
	}

	if len(result.Failures) > 0 {
		os.Exit(1)
	}
}
