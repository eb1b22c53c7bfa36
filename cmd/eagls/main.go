/*******************************************************************************
*
* Copyright 2024 Linden10
*
* This file is part of Eagls-engine-tool.
*
* Eagls-engine-tool is free software: you can redistribute it and/or modify it
* under the terms of the GNU General Public License as published by the Free
* Software Foundation, either version 3 of the License, or (at your option)
* any later version.
*
* Eagls-engine-tool is distributed in the hope that it will be useful, but
* WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY
* or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for
* more details.
*
* You should have received a copy of the GNU General Public License along
* with Eagls-engine-tool. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

//Command eagls is a thin CLI wrapping the rng/cipher/lzss/pak/script/
//graphics/bundle/batch packages. It contains no format logic of its own:
//every subcommand parses its flags, calls a leaf package, and prints the
//teacher-style `>>`/`!!` diagnostics.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ogier/pflag"

	"github.com/Linden10/Eagls-engine-tool/batch"
	"github.com/Linden10/Eagls-engine-tool/eaglserr"
	"github.com/Linden10/Eagls-engine-tool/graphics"
	"github.com/Linden10/Eagls-engine-tool/internal/diagnostics"
	"github.com/Linden10/Eagls-engine-tool/pak"
	"github.com/Linden10/Eagls-engine-tool/script"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "unpack":
		err = runUnpack(os.Args[2:])
	case "pack":
		err = runPack(os.Args[2:])
	case "extract-text":
		err = runExtractText(os.Args[2:])
	case "replace-text":
		err = runReplaceText(os.Args[2:])
	case "gr2bmp":
		err = runGr2Bmp(os.Args[2:])
	case "bmp2gr":
		err = runBmp2Gr(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "--help", "-h":
		printHelp()
		return
	default:
		diagnostics.ShowError(fmt.Errorf("unrecognized subcommand: %s", os.Args[1]))
		printHelp()
		os.Exit(1)
	}

	if err != nil {
		diagnostics.ShowError(err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Usage: eagls <subcommand> <options>")
	fmt.Println()
	fmt.Println("Subcommands:")
	fmt.Println("  unpack        --pak FILE --out DIR")
	fmt.Println("  pack          --out FILE DIR")
	fmt.Println("  extract-text  --dat FILE --out FILE")
	fmt.Println("  replace-text  --dat FILE --sidecar FILE --out FILE")
	fmt.Println("  gr2bmp        --in FILE --out FILE")
	fmt.Println("  bmp2gr        --in FILE --out FILE")
	fmt.Println("  batch         MANIFEST.toml")
}

func runUnpack(args []string) error {
	fs := pflag.NewFlagSet("unpack", pflag.ExitOnError)
	pakPath := fs.String("pak", "", "path to the .pak file")
	outDir := fs.String("out", "", "directory to extract into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pakPath == "" || *outDir == "" {
		return fmt.Errorf("unpack requires --pak and --out")
	}

	idxPath := strings.TrimSuffix(*pakPath, filepath.Ext(*pakPath)) + ".idx"
	a, err := pak.Open(idxPath, *pakPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0777); err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}

	var counter diagnostics.Counter
	for _, entry := range a.Entries() {
		body, err := a.Extract(entry.Name)
		if err != nil {
			counter.Record(err)
			continue
		}
		outPath := filepath.Join(*outDir, entry.Name)
		counter.Record(ioutil.WriteFile(outPath, body, 0666))
	}
	fmt.Println(counter.Summary())
	return nil
}

func runPack(args []string) error {
	fs := pflag.NewFlagSet("pack", pflag.ExitOnError)
	outPath := fs.String("out", "", "path to the .pak file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" || fs.NArg() != 1 {
		return fmt.Errorf("pack requires --out and exactly one input directory")
	}
	dir := fs.Arg(0)

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}

	var members []pak.Member
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		body, err := ioutil.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return eaglserr.New(eaglserr.IoError, err)
		}
		members = append(members, pak.Member{Name: e.Name(), Body: body})
	}

	idxPath := strings.TrimSuffix(*outPath, filepath.Ext(*outPath)) + ".idx"
	return pak.Create(idxPath, *outPath, members)
}

func runExtractText(args []string) error {
	fs := pflag.NewFlagSet("extract-text", pflag.ExitOnError)
	datPath := fs.String("dat", "", "path to the .dat file")
	outPath := fs.String("out", "", "path to the sidecar file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *datPath == "" || *outPath == "" {
		return fmt.Errorf("extract-text requires --dat and --out")
	}

	raw, err := ioutil.ReadFile(*datPath)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	c, err := script.Open(raw)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(*outPath, c.ExtractText(), 0666)
}

func runReplaceText(args []string) error {
	fs := pflag.NewFlagSet("replace-text", pflag.ExitOnError)
	datPath := fs.String("dat", "", "path to the .dat file")
	sidecarPath := fs.String("sidecar", "", "path to the edited sidecar file")
	outPath := fs.String("out", "", "path to the .dat file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *datPath == "" || *sidecarPath == "" || *outPath == "" {
		return fmt.Errorf("replace-text requires --dat, --sidecar and --out")
	}

	raw, err := ioutil.ReadFile(*datPath)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	c, err := script.Open(raw)
	if err != nil {
		return err
	}
	sidecar, err := ioutil.ReadFile(*sidecarPath)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	if err := c.ReplaceText(sidecar, diagnostics.ShowWarning); err != nil {
		return err
	}
	return ioutil.WriteFile(*outPath, c.Bytes(), 0666)
}

func runGr2Bmp(args []string) error {
	fs := pflag.NewFlagSet("gr2bmp", pflag.ExitOnError)
	inPath := fs.String("in", "", "path to the .gr file")
	outPath := fs.String("out", "", "path to the .bmp file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return fmt.Errorf("gr2bmp requires --in and --out")
	}
	raw, err := ioutil.ReadFile(*inPath)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	return ioutil.WriteFile(*outPath, graphics.Unwrap(raw), 0666)
}

func runBmp2Gr(args []string) error {
	fs := pflag.NewFlagSet("bmp2gr", pflag.ExitOnError)
	inPath := fs.String("in", "", "path to the .bmp file")
	outPath := fs.String("out", "", "path to the .gr file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return fmt.Errorf("bmp2gr requires --in and --out")
	}
	raw, err := ioutil.ReadFile(*inPath)
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	return ioutil.WriteFile(*outPath, graphics.Wrap(raw), 0666)
}

func runBatch(args []string) error {
	fs := pflag.NewFlagSet("batch", pflag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("batch requires exactly one manifest path")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return eaglserr.New(eaglserr.IoError, err)
	}
	defer f.Close()

	m, err := batch.Load(f)
	if err != nil {
		return err
	}

	var collector eaglserr.Collector
	if err := batch.Run(m, &collector); err != nil {
		return err
	}
	fmt.Printf("%d succeeded, %d failed\n", len(m.Archive)+len(m.Script)-collector.Count(), collector.Count())
	return nil
}
