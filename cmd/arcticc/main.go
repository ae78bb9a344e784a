package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"arctic.dev/arctic/pkg/bytecode"
	"arctic.dev/arctic/pkg/codegen"
	"arctic.dev/arctic/pkg/lexer"
	"arctic.dev/arctic/pkg/parser"
	"arctic.dev/arctic/pkg/syntax"
	"arctic.dev/arctic/pkg/vm"
	"arctic.dev/arctic/pkg/word"

	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
Arcticc compiles one Arctic source file (a script, shader or provided-rule
program) down to a linked ScriptImage and, unless --emit is given, runs it
immediately through the VirtualMachine and prints the chosen entry
function's result.
`, "\n", " ")

var Arcticc = cli.New(Description).
	WithArg(cli.NewArg("input", "The source file to compile").WithType(cli.TypeString)).
	WithOption(cli.NewOption("entry", "Name of the function to run after compiling (default \"main\")").WithType(cli.TypeString)).
	WithOption(cli.NewOption("rules", "Force the tokenizer rule set: script or shader (default: read from the source's 'context' directive)").WithType(cli.TypeString)).
	WithOption(cli.NewOption("emit", "Write the linked ScriptImage to this path instead of running it").WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("ERROR: Unable to open input file: %s\n", err)
		return -1
	}

	rules := lexer.Provided
	switch strings.ToLower(options["rules"]) {
	case "script":
		rules = lexer.Script
	case "shader":
		rules = lexer.Shader
	}

	stream := word.NewStream(src)
	lex := lexer.New(stream, lexer.Options{Rules: rules})

	alloc := syntax.NewHostAllocator()
	dispatcher := syntax.NewDispatcher()
	p := parser.New(lex, alloc, dispatcher)

	root, err := p.Parse()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
		return -1
	}

	gen := codegen.New()
	image, err := gen.Generate(root)
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	if path, requested := options["emit"]; requested && path != "" {
		if err := writeImage(path, image); err != nil {
			fmt.Printf("ERROR: Unable to write output image: %s\n", err)
			return -1
		}
		return 0
	}

	entry := options["entry"]
	if entry == "" {
		entry = "main"
	}

	machine := vm.New(image)
	result, err := machine.Call(entry)
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'execution' pass: %s\n", err)
		return -1
	}

	fmt.Printf("%s() = %d\n", entry, result)
	return 0
}

// writeImage serializes a linked ScriptImage as big-endian 4-byte words,
// the same order Image.Words' own packName entries use.
func writeImage(path string, image bytecode.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	var buf [4]byte
	for _, word := range image.Words {
		binary.BigEndian.PutUint32(buf[:], word.Uint32())
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

func main() { os.Exit(Arcticc.Run(os.Args, os.Stdout)) }
