package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/mdfmt"
	"pkt.systems/version"
)

const defaultWidth = 80

func init() {
	version.SetDefaultModule("pkt.systems/mdfmt")
}

type options struct {
	width       int
	wrap        bool
	widthMode   string
	outPath     string
	inPlace     bool
	check       bool
	ast         bool
	frontMatter bool
	verbose     bool
}

// errUnformatted makes --check exit with status 1.
var errUnformatted = errors.New("input is not formatted")

func main() {
	var opts options
	flags := pflag.NewFlagSet("mdfmt", pflag.ExitOnError)
	flags.IntVarP(&opts.width, "width", "w", 0, "Reflow paragraphs to this width (0 keeps line breaks)")
	flags.BoolVar(&opts.wrap, "wrap", false, "Reflow to the terminal width when --width is 0")
	flags.StringVar(&opts.widthMode, "width-mode", mdfmt.WidthRunes.String(), "Width measure: runes|cells|graphemes")
	flags.StringVarP(&opts.outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&opts.inPlace, "in-place", "i", false, "Rewrite input files in place")
	flags.BoolVarP(&opts.check, "check", "c", false, "List inputs that are not formatted and exit 1 if any")
	flags.BoolVar(&opts.ast, "ast", false, "Print the token tree as YAML instead of Markdown")
	flags.BoolVar(&opts.frontMatter, "front-matter", true, "Keep a leading ---, +++ or ;;; front matter block verbatim")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log inputs and timing to stderr")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: mdfmt [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(os.Stderr, "Inputs may be paths, file:// or http(s):// URLs.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := validateOptions(opts, flags.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "mdfmt: %v\n\n", err)
		flags.Usage()
		os.Exit(2)
	}
	mode, err := mdfmt.ParseWidthMode(opts.widthMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --width-mode: %v\n", err)
		os.Exit(2)
	}
	width := resolveWidth(opts)
	logger.Debug("resolved width", "width", width, "mode", mode)

	cfg := formatConfig{width: width, mode: mode, frontMatter: opts.frontMatter}
	start := time.Now()
	switch {
	case opts.check || opts.inPlace:
		err = runFiles(logger, flags.Args(), cfg, opts.check, os.Stdout)
	default:
		err = runStream(logger, flags.Args(), cfg, opts)
	}
	logger.Debug("done", "elapsed", time.Since(start))
	if errors.Is(err, errUnformatted) {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdfmt: %v\n", err)
		os.Exit(1)
	}
}

func validateOptions(opts options, args []string) error {
	if opts.width < 0 {
		return fmt.Errorf("--width must not be negative")
	}
	if opts.check && opts.inPlace {
		return fmt.Errorf("--check and --in-place are exclusive")
	}
	if (opts.check || opts.inPlace) && (opts.ast || opts.outPath != "") {
		return fmt.Errorf("--check and --in-place cannot be combined with --ast or --output")
	}
	if opts.inPlace {
		if len(args) == 0 {
			return fmt.Errorf("--in-place needs file inputs")
		}
		for _, a := range args {
			if _, ok := localPath(strings.TrimSpace(a)); !ok {
				return fmt.Errorf("--in-place cannot rewrite %s", a)
			}
		}
	}
	return nil
}

func resolveWidth(opts options) int {
	if opts.width > 0 || !opts.wrap {
		return opts.width
	}
	return terminalWidth(defaultWidth)
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconvAtoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

type formatConfig struct {
	width       int
	mode        mdfmt.WidthMode
	frontMatter bool
}

func (c formatConfig) request(r io.Reader, w io.Writer) mdfmt.RenderRequest {
	return mdfmt.RenderRequest{
		Reader:      r,
		Writer:      w,
		Width:       c.width,
		FrontMatter: c.frontMatter,
		Options:     []mdfmt.RenderOption{mdfmt.WithWidthMode(c.mode)},
	}
}

func format(src []byte, cfg formatConfig) ([]byte, error) {
	var out bytes.Buffer
	if err := mdfmt.Render(cfg.request(bytes.NewReader(src), &out)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// runStream formats the concatenated inputs to the output.
func runStream(logger *slog.Logger, args []string, cfg formatConfig, opts options) error {
	reader, closer, err := openInputs(args)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger.Debug("reading inputs", "count", len(args))

	writer, closeOut, err := resolveOutput(opts.outPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	if opts.ast {
		return dumpAST(reader, writer, cfg)
	}
	if err := mdfmt.Render(cfg.request(reader, writer)); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func dumpAST(r io.Reader, w io.Writer, cfg formatConfig) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := mdfmt.ValidateInput(src); err != nil {
		return fmt.Errorf("ast: %w", err)
	}
	parser, err := mdfmt.NewParser(mdfmt.WithFrontMatter(cfg.frontMatter))
	if err != nil {
		return fmt.Errorf("ast: %w", err)
	}
	return mdfmt.DumpAST(w, parser.ParseString(string(src)))
}

// runFiles checks or rewrites each input on its own. Check mode lists the
// inputs whose formatting would change on out.
func runFiles(logger *slog.Logger, args []string, cfg formatConfig, check bool, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	unformatted := 0
	for _, arg := range args {
		src, err := readInput(arg)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		formatted, err := format(src, cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		if bytes.Equal(src, formatted) {
			logger.Debug("already formatted", "input", arg)
			continue
		}
		if check {
			unformatted++
			fmt.Fprintln(out, arg)
			continue
		}
		local, _ := localPath(strings.TrimSpace(arg))
		path := normalizePath(local)
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", arg, err)
		}
		if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", arg, err)
		}
		logger.Debug("rewrote", "input", arg, "bytes", len(formatted))
	}
	if unformatted > 0 {
		return errUnformatted
	}
	return nil
}

func readInput(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	src, err := makeInputSource(arg)
	if err != nil {
		return nil, err
	}
	reader, closer, err := src.open()
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	return io.ReadAll(reader)
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

func openInputs(args []string) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return os.Stdin, nil, nil
	}
	sources := make([]inputSource, 0, len(args))
	for _, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	path, ok := localPath(raw)
	if !ok {
		return inputSource{open: func() (io.Reader, io.Closer, error) {
			return openURL(raw)
		}}, nil
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openFile(path)
	}}, nil
}

// localPath resolves a plain path or file:// URL to a filesystem path. It
// reports false for http(s) inputs.
func localPath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw, true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return "", false
	case "file":
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		return path, true
	}
	return raw, true
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, resp.Body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(normalizePath(path))
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func strconvAtoi(value string) (int, error) {
	var n int
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return 0, fmt.Errorf("invalid int")
		}
		n = n*10 + int(value[i]-'0')
	}
	return n, nil
}
