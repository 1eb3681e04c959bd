package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/astei/mcstructs/nbt"
)

var gzipMagic = []byte{0x1f, 0x8b}

func viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "pretty-prints an NBT file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "big-endian",
				Usage: "read a big-endian (Java edition) stream instead of little-endian",
			},
			&cli.BoolFlag{
				Name:  "color",
				Usage: "force colored output even when not writing to a terminal",
			},
			&cli.StringFlag{
				Name:  "chunk",
				Usage: "treat FILE as an Anvil region and print the chunk at `X,Z`",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("view: need exactly one file")
			}
			path := c.Args().First()
			log := logger(c)

			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			littleEndian := !c.Bool("big-endian")
			var data []byte
			if c.IsSet("chunk") {
				x, z, err := parseChunkCoord(c.String("chunk"))
				if err != nil {
					return err
				}
				region, err := parseRegion(raw)
				if err != nil {
					return fmt.Errorf("could not read region %s: %w", path, err)
				}
				if data, err = region.readChunk(x, z); err != nil {
					return fmt.Errorf("could not read chunk %d,%d of %s: %w", x, z, path, err)
				}
				littleEndian = false
				log.Debug("read region chunk", "path", path, "x", x, "z", z, "bytes", len(data))
			} else {
				if data, err = decompress(raw); err != nil {
					return fmt.Errorf("could not decompress %s: %w", path, err)
				}
				if len(data) != len(raw) {
					log.Debug("decompressed gzip input", "path", path, "compressed", len(raw), "uncompressed", len(data))
				}
			}

			tags, err := nbt.Decode(littleEndian, data)
			if err != nil {
				return fmt.Errorf("could not decode %s: %w", path, err)
			}
			log.Debug("decoded", "path", path, "tags", len(tags))
			return nbt.Fprint(c.App.Writer, tags, newTermStyle(c.App.Writer, c.Bool("color")))
		},
	}
}

// decompress unwraps gzip input, as Java edition files usually are; anything
// else is returned unchanged.
func decompress(raw []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, gzipMagic) {
		return raw, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// termStyle colors tag kinds cyan, numbers yellow and strings green.
type termStyle struct {
	out *termenv.Output
}

func newTermStyle(w io.Writer, force bool) termStyle {
	var opts []termenv.OutputOption
	if force {
		opts = append(opts, termenv.WithProfile(termenv.ANSI))
	}
	return termStyle{out: termenv.NewOutput(w, opts...)}
}

func (s termStyle) paint(v, color string) string {
	return s.out.String(v).Foreground(s.out.Color(color)).String()
}

func (s termStyle) Kind(v string) string   { return s.paint(v, "6") }
func (s termStyle) Number(v string) string { return s.paint(v, "3") }
func (s termStyle) Text(v string) string   { return s.paint(v, "2") }
