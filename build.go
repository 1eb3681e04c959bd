package main

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/astei/mcstructs/blueprint"
	"github.com/astei/mcstructs/structure"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "builds a structure file from a YAML blueprint",
		ArgsUsage: "BLUEPRINT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "structure file to write",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("build: need exactly one blueprint")
			}
			bp, err := blueprint.Load(c.Args().First())
			if err != nil {
				return err
			}
			s, err := bp.Build()
			if err != nil {
				return err
			}
			return writeStructure(c, s, c.String("out"))
		},
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "writes a small example structure",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "structure file to write",
				Value:   "generated.mcstructure",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := demoStructure()
			if err != nil {
				return err
			}
			return writeStructure(c, s, c.String("out"))
		},
	}
}

// demoStructure is a comparator sitting under a barrel of redstone.
func demoStructure() (*structure.Structure, error) {
	s, err := structure.New(structure.NewVec3[int32](1, 2, 1))
	if err != nil {
		return nil, err
	}
	comparator := structure.NewBlockType("minecraft:unpowered_comparator").
		WithState("minecraft:cardinal_direction", structure.StringState("north")).
		WithState("output_lit_bit", structure.Bool(false)).
		WithState("output_subtract_bit", structure.Bool(true))
	if _, err := s.SetBlock(structure.Origin, comparator); err != nil {
		return nil, err
	}

	barrel, err := s.SetBlock(structure.NewVec3[int32](0, 1, 0), structure.NewBlockType("minecraft:barrel"))
	if err != nil {
		return nil, err
	}
	if _, err := barrel.SetItemSlot(0, "minecraft:redstone", 32); err != nil {
		return nil, err
	}
	return s, nil
}

func writeStructure(c *cli.Context, s *structure.Structure, path string) error {
	data, err := s.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger(c).Info("wrote structure",
		"path", path,
		"bytes", len(data),
		"size", s.Size().String(),
		"palette", len(s.Palette()),
		"placed", s.Placed(),
	)
	return nil
}
