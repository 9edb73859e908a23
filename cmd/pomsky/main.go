package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	flag "github.com/spf13/pflag"

	"github.com/pomsky-lang/pomsky-go/internal/compile"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/flavor"

	// Import flavors to register them via init()
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/dotnet"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/java"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/js"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/pcre"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/python"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/re2"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/ruby"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/rust"
)

var version = "0.1.0"

func main() {
	var stdin io.Reader
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		stdin = os.Stdin
	}
	if err := run(os.Args, stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pomsky", flag.ContinueOnError)
	fs.SetOutput(stderr)

	flavorName := fs.StringP("flavor", "f", "pcre", "target regex flavor")
	unicodeDefault := fs.Bool("unicode", true, "start with unicode mode enabled")
	noColor := fs.Bool("no-color", false, "disable colored diagnostic output")
	copyOut := fs.Bool("copy", false, "copy the compiled regex to the terminal clipboard via OSC52")
	showVersion := fs.BoolP("version", "v", false, "show version")
	deny := fs.StringSlice("deny", nil, "feature tokens to deny beyond the flavor's own limits; repeatable")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "pomsky - compile a Pomsky pattern to a target regex flavor\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  pomsky [flags] <pattern>\n")
		fmt.Fprintf(stderr, "  echo 'pattern' | pomsky [flags]\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nAvailable flavors:\n")
		for _, name := range flavor.List() {
			fmt.Fprintf(stderr, "  %s\n", name)
		}
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  pomsky -f pcre \"'foo' | 'bar'\"\n")
		fmt.Fprintf(stderr, "  pomsky -f js \"range '0'-'255'\"\n")
		fmt.Fprintf(stderr, "  echo \"Start 'x'+ End\" | pomsky -f python\n")
	}

	err := fs.Parse(args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "pomsky version %s\n", version)
		return nil
	}

	name := flavor.Name(*flavorName)
	if !name.Valid() {
		fmt.Fprintf(stderr, "Error: unknown flavor %q\n", *flavorName)
		names := make([]string, len(flavor.List()))
		for i, n := range flavor.List() {
			names[i] = string(n)
		}
		fmt.Fprintf(stderr, "Available flavors: %s\n", strings.Join(names, ", "))
		return fmt.Errorf("unknown flavor: %s", *flavorName)
	}

	allowed := flavor.NewAllowedFeatures()
	for _, tok := range *deny {
		allowed.Deny(flavor.Feature(tok))
	}

	pattern, err := getInput(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return err
	}

	result := compile.Compile(pattern, compile.Options{
		Flavor:         name,
		Allowed:        allowed,
		UnicodeDefault: *unicodeDefault,
	})

	renderer := newDiagRenderer(stderr, colorEnabled(stderr, *noColor))
	hasError := false
	for _, d := range result.Diagnostics {
		if d.Severity == diag.SeverityError {
			hasError = true
		}
		renderer.print(pattern, d)
	}
	if hasError {
		return fmt.Errorf("compilation failed")
	}

	fmt.Fprintln(stdout, result.Output)
	if *copyOut {
		fmt.Fprint(stdout, osc52.New(result.Output).String())
	}
	return nil
}

func getInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if stdin != nil {
		input, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimSpace(string(input)), nil
	}
	return "", fmt.Errorf("no pattern provided")
}

func colorEnabled(stderr io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := stderr.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// diagRenderer prints diagnostics in the pattern + caret-indicator style,
// colorized by severity when the destination is a terminal. The error
// and warning colors are blended with white via go-colorful to derive a
// softer shade for the "help" line, rather than hand-picking a second
// hex constant.
type diagRenderer struct {
	out      *termenv.Output
	errColor colorful.Color
	warnColor colorful.Color
}

func newDiagRenderer(w io.Writer, color bool) *diagRenderer {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI256
	}
	errColor, _ := colorful.Hex("#e05561")
	warnColor, _ := colorful.Hex("#f0c674")
	return &diagRenderer{
		out:       termenv.NewOutput(w, termenv.WithProfile(profile)),
		errColor:  errColor,
		warnColor: warnColor,
	}
}

func (r *diagRenderer) print(pattern string, d diag.Diagnostic) {
	base := r.errColor
	if d.Severity == diag.SeverityWarning {
		base = r.warnColor
	}
	helpShade := base.BlendLuv(colorful.Color{R: 1, G: 1, B: 1}, 0.5)

	label := r.out.String(strings.ToUpper(d.Severity.String())).Foreground(r.out.Color(base.Hex())).Bold().String()
	fmt.Fprintf(r.out, "%s[%s]: %s\n", label, d.Code, d.Message)
	fmt.Fprintf(r.out, "  %s\n", pattern)

	col := d.Span.Start
	width := d.Span.Len()
	if width < 1 {
		width = 1
	}
	if col >= 0 && col <= len(pattern) {
		fmt.Fprintf(r.out, "  %s%s\n", strings.Repeat(" ", col), strings.Repeat("^", width))
	}
	if d.Help != "" {
		help := r.out.String("help: " + d.Help).Foreground(r.out.Color(helpShade.Hex()))
		fmt.Fprintf(r.out, "  %s\n", help)
	}
	fmt.Fprintln(r.out)
}
