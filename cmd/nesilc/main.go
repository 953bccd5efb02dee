package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/nesilc/nesilc/internal/asmsrc"
	"github.com/nesilc/nesilc/internal/codegen"
	"github.com/nesilc/nesilc/internal/ilimage"
	"github.com/nesilc/nesilc/internal/linker"
)

func main() {
	app := cli.NewApp()
	app.Name = "nesilc"
	app.Usage = "Compile a stack-IL program image into an NES ROM"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "build",
			Usage:     "Compile a program image to a ROM",
			ArgsUsage: "image",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "o, out",
					Value: "out.nes",
					Usage: "output ROM path",
				},
				cli.StringSliceFlag{
					Name:  "chars, chars-asm",
					Usage: "external 6502 assembly file(s) supplying the CHARS segment and extra code",
				},
				cli.StringFlag{
					Name:  "mirror",
					Value: "horizontal",
					Usage: "nametable mirroring: vertical or horizontal",
				},
				cli.BoolFlag{
					Name:  "v, verbose",
					Usage: "print build progress",
				},
			},
			Action: build,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func build(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("build requires a program image path", 1)
	}
	imagePath := c.Args().First()
	verbose := c.Bool("verbose")

	mirror, err := parseMirroring(c.String("mirror"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("opening %s: %v", imagePath, err), 1)
	}
	defer f.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "nesilc: reading image %s\n", imagePath)
	}
	img, err := ilimage.ReadImage(f)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	prog, err := ilimage.Read(img)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "nesilc: generating code for %d methods\n", len(prog.Methods))
	}
	result, err := codegen.Compile(prog)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	var asmFiles []*asmsrc.File
	for _, path := range c.StringSlice("chars") {
		if verbose {
			fmt.Fprintf(os.Stderr, "nesilc: parsing assembly file %s\n", path)
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("reading %s: %v", path, err), 1)
		}
		file, err := asmsrc.Parse(string(text))
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("%s: %v", path, err), 1)
		}
		asmFiles = append(asmFiles, file)
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "nesilc: linking ROM")
	}
	rom, err := linker.Link(linker.Input{
		Codegen:   result,
		AsmFiles:  asmFiles,
		Mirroring: mirror,
	})
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	outPath := c.String("out")
	if err := os.WriteFile(outPath, rom, 0644); err != nil {
		return cli.NewExitError(fmt.Sprintf("writing %s: %v", outPath, err), 1)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "nesilc: wrote %s (%d bytes)\n", outPath, len(rom))
	}
	return nil
}

func parseMirroring(s string) (linker.Mirroring, error) {
	switch s {
	case "vertical":
		return linker.MirrorVertical, nil
	case "horizontal":
		return linker.MirrorHorizontal, nil
	default:
		return 0, fmt.Errorf("unknown -mirror value %q, want vertical or horizontal", s)
	}
}
