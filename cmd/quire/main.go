// Package main provides the quire command for inspecting and converting
// quire documents.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/jpl-au/quire"
)

// CLI defines the command-line interface using Kong.
var CLI struct {
	LogLevel    string `name:"log-level" help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"warn"`
	Compression string `name:"compression" help:"Body compression for written documents" enum:"zstd,none,xz" default:"zstd"`
	Checksum    string `name:"checksum" help:"Checksum algorithm for written documents" enum:"xxh3,fnv1a,blake2b,blake3" default:"xxh3"`
	MaxSize     int    `name:"max-size" help:"Maximum decompressed body size in bytes (0 for the default)"`

	Export ExportCmd `cmd:"" help:"Export a document as JSON or re-serialised binary"`
	Import ImportCmd `cmd:"" help:"Build a document from a JSON object"`
	Verify VerifyCmd `cmd:"" help:"Check a document's integrity"`
}

// ExportCmd renders a document.
type ExportCmd struct {
	Format     string `name:"format" short:"f" help:"Output format" enum:"json,binary" default:"json"`
	SkipVerify bool   `name:"skip-verify" help:"Decode best-effort without integrity checks"`
	Out        string `name:"out" short:"o" help:"Destination file (required for binary)" type:"path"`
	Color      string `name:"color" help:"Colour JSON output" enum:"auto,always,never" default:"auto"`
	Input      string `arg:"" optional:"" help:"Input document (default stdin)" type:"path"`
}

func (c *ExportCmd) Run(cfg quire.Config) error {
	in, err := openInput(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := quire.ExportOptions{Config: cfg}
	if c.SkipVerify {
		opts.Policy = quire.Skip
	}
	switch c.Color {
	case "always":
		opts.Color = quire.ColorAlways
	case "never":
		opts.Color = quire.ColorNever
	}

	if c.Format == "binary" {
		if c.Out == "" {
			return errors.New("binary export needs --out")
		}
		return quire.ExportBinary(in, c.Out, opts)
	}

	if c.Out == "" {
		return quire.ExportJSON(in, os.Stdout, opts)
	}
	out, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if err := quire.ExportJSON(in, out, opts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ImportCmd converts a JSON object into a document.
type ImportCmd struct {
	Out   string `name:"out" short:"o" help:"Destination file (default stdout)" type:"path"`
	Input string `arg:"" optional:"" help:"Input JSON (default stdin)" type:"path"`
}

func (c *ImportCmd) Run(cfg quire.Config) error {
	in, err := openInput(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	doc, err := quire.ImportJSON(data, cfg)
	if err != nil {
		return err
	}
	if c.Out != "" {
		return doc.SaveFile(c.Out)
	}
	out, err := doc.Save()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// VerifyCmd loads a document under the strict policy and prints a summary.
type VerifyCmd struct {
	Input string `arg:"" help:"Document to check" type:"existingfile"`
}

func (c *VerifyCmd) Run(cfg quire.Config) error {
	doc, err := quire.Open(c.Input, quire.Verify, cfg)
	if err != nil {
		var de *quire.DecodeError
		if errors.As(err, &de) && !de.Corrupt() {
			return fmt.Errorf("%s: not a readable quire document: %w", c.Input, err)
		}
		return fmt.Errorf("%s: %w", c.Input, err)
	}
	fmt.Printf("%s: ok, %d ops, %d actors\n", c.Input, doc.Len(), len(doc.Actors()))
	return nil
}

var compressions = map[string]int{
	"zstd": quire.CompressZstd,
	"none": quire.CompressNone,
	"xz":   quire.CompressXZ,
}

var checksums = map[string]int{
	"xxh3":    quire.AlgXXHash3,
	"fnv1a":   quire.AlgFNV1a,
	"blake2b": quire.AlgBlake2b,
	"blake3":  quire.AlgBlake3,
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func logger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("quire"),
		kong.Description("Inspect and convert quire documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	cfg := quire.Config{
		Algorithm:       checksums[CLI.Checksum],
		Compression:     compressions[CLI.Compression],
		MaxDocumentSize: CLI.MaxSize,
		Logger:          logger(CLI.LogLevel),
	}
	err := ctx.Run(cfg)
	ctx.FatalIfErrorf(err)
}
