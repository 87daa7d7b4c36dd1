package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/classes"
	"github.com/wippyai/gdbind/engine"
	"github.com/wippyai/gdbind/gd"
	"github.com/wippyai/gdbind/storage"
)

func main() {
	var (
		apiFile     = flag.String("api", "", "Path to an extension API JSON file (default: built-in classes)")
		className   = flag.String("class", "", "Show details of one class")
		list        = flag.Bool("list", false, "List the class hierarchy and exit")
		demo        = flag.Bool("demo", false, "Run the handle lifecycle demo")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if !*list && *className == "" && !*demo && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: gdinspect [-api extension_api.json] -list")
		fmt.Fprintln(os.Stderr, "       gdinspect [-api extension_api.json] -class Node2D")
		fmt.Fprintln(os.Stderr, "       gdinspect -demo [-v]")
		fmt.Fprintln(os.Stderr, "       gdinspect [-api extension_api.json] -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		class.SetLogger(logger.Named("class"))
		engine.SetLogger(logger.Named("engine"))
		gd.SetLogger(logger.Named("gd"))
		storage.SetLogger(logger.Named("storage"))
	}

	if *demo {
		if err := runDemo(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	reg, err := loadRegistry(*apiFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(reg, *apiFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *list {
		printTree(os.Stdout, reg, class.RootObject, 0)
	}
	if *className != "" {
		if err := printClass(os.Stdout, reg, *className); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadRegistry returns a registry of the built-in classes, or of the
// classes in apiFile when given.
func loadRegistry(apiFile string) (*class.Registry, error) {
	reg := class.NewRegistry()
	if apiFile == "" {
		if err := classes.Register(reg); err != nil {
			return nil, err
		}
		return reg, nil
	}

	f, err := os.Open(apiFile)
	if err != nil {
		return nil, fmt.Errorf("open api: %w", err)
	}
	defer f.Close()

	api, err := class.LoadAPI(f)
	if err != nil {
		return nil, err
	}
	if err := class.RegisterAPI(reg, api); err != nil {
		return nil, err
	}
	return reg, nil
}

func describe(d *class.Descriptor) string {
	var tags []string
	tags = append(tags, d.Memory.String())
	if d.Domain == class.DomainHost {
		tags = append(tags, "host")
	}
	if d.Singleton {
		tags = append(tags, "singleton")
	}
	if !d.Instantiable {
		tags = append(tags, "abstract")
	}
	return "[" + strings.Join(tags, ", ") + "]"
}

func printTree(w io.Writer, reg *class.Registry, name string, depth int) {
	d, ok := reg.Lookup(name)
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), name, describe(d))
	for _, child := range reg.Children(name) {
		printTree(w, reg, child, depth+1)
	}
}

func printClass(w io.Writer, reg *class.Registry, name string) error {
	d, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown class %q", name)
	}
	fmt.Fprintf(w, "Class:      %s\n", d.Name)
	fmt.Fprintf(w, "Inherits:   %s\n", strings.Join(reg.Chain(name)[1:], " < "))
	fmt.Fprintf(w, "Memory:     %s\n", d.Memory)
	fmt.Fprintf(w, "Domain:     %s\n", d.Domain)
	fmt.Fprintf(w, "Singleton:  %v\n", d.Singleton)
	fmt.Fprintf(w, "Abstract:   %v\n", !d.Instantiable)
	if children := reg.Children(name); len(children) > 0 {
		fmt.Fprintf(w, "Subclasses: %s\n", strings.Join(children, ", "))
	}
	return nil
}
