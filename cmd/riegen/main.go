// Copyright 2025 riegen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// riegen generates C translation units that emulate missing RISC-V
// Vector extension intrinsics in terms of baseline RVV 1.0 intrinsics.
//
// Usage:
//
//	riegen -extension zvkb -attributes static,inline -output zvkb.h
//	riegen -extension all -prototypes -definitions=false
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/riegen/rvv"
	"github.com/ajroetker/riegen/rvv/ext"
	"github.com/ajroetker/riegen/rvv/ext/zvabd"
	"github.com/ajroetker/riegen/rvv/ext/zvdot4a8i"
	"github.com/ajroetker/riegen/rvv/ext/zvkb"
	"github.com/ajroetker/riegen/rvv/ext/zvzip"
)

type extension struct {
	name     string
	generate func(ext.Params) (string, error)
}

// extensions is the deterministic generation order.
var extensions = []extension{
	{"zvkb", zvkb.Generate},
	{"zvdot4a8i", zvdot4a8i.Generate},
	{"zvzip", zvzip.Generate},
	{"zvabd", zvabd.Generate},
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("riegen: ")

	var (
		extFlag     = flag.String("extension", "all", "comma-separated extensions to generate (zvkb, zvdot4a8i, zvzip, zvabd) or all")
		attrFlag    = flag.String("attributes", "", "comma-separated attributes prepended to each definition, e.g. static,inline")
		prototypes  = flag.Bool("prototypes", false, "emit prototype declarations")
		definitions = flag.Bool("definitions", true, "emit function definitions")
		output      = flag.String("output", "", "output file (default stdout)")
		eltFlag     = flag.String("elt", "", "comma-separated element widths to keep, e.g. 8,32")
		lmulFlag    = flag.String("lmul", "", "comma-separated LMULs to keep, e.g. m1,m4")
		tailFlag    = flag.String("tail", "", "comma-separated tail policies to keep: tu, ta")
		maskFlag    = flag.String("mask", "", "comma-separated mask policies to keep: mu, ma, um")
	)
	flag.Parse()

	params, err := buildParams(*attrFlag, *prototypes, *definitions, *eltFlag, *lmulFlag, *tailFlag, *maskFlag)
	if err != nil {
		log.Fatal(err)
	}
	selected, err := selectExtensions(*extFlag)
	if err != nil {
		log.Fatal(err)
	}

	units := make([]string, len(selected))
	var g errgroup.Group
	for i, e := range selected {
		g.Go(func() error {
			unit, err := e.generate(params)
			if err != nil {
				return fmt.Errorf("%s: %w", e.name, err)
			}
			units[i] = "// " + e.name + " emulation\n" + unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.WriteString(strings.Join(units, "\n")); err != nil {
		log.Fatal(err)
	}
}

func selectExtensions(names string) ([]extension, error) {
	if names == "all" || names == "" {
		return extensions, nil
	}
	wanted := make(map[string]bool)
	for _, name := range strings.Split(names, ",") {
		wanted[strings.TrimSpace(name)] = true
	}
	var selected []extension
	for _, e := range extensions {
		if wanted[e.name] {
			selected = append(selected, e)
			delete(wanted, e.name)
		}
	}
	for name := range wanted {
		return nil, fmt.Errorf("unknown extension %q", name)
	}
	return selected, nil
}

func buildParams(attrs string, prototypes, definitions bool, elts, lmuls, tails, masks string) (ext.Params, error) {
	p := ext.Params{Prototypes: prototypes, Definitions: definitions}
	if attrs != "" {
		p.Attributes = strings.Split(attrs, ",")
	}

	if elts != "" {
		for _, field := range strings.Split(elts, ",") {
			width, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return p, fmt.Errorf("bad element width %q", field)
			}
			s, err := rvv.EltFromSize(true, width)
			if err != nil {
				return p, err
			}
			u, err := rvv.EltFromSize(false, width)
			if err != nil {
				return p, err
			}
			p.Elts = append(p.Elts, s, u)
		}
	}

	if lmuls != "" {
		byName := map[string]rvv.LMUL{
			"mf8": rvv.MF8, "mf4": rvv.MF4, "mf2": rvv.MF2,
			"m1": rvv.M1, "m2": rvv.M2, "m4": rvv.M4, "m8": rvv.M8,
		}
		for _, field := range strings.Split(lmuls, ",") {
			l, ok := byName[strings.TrimSpace(field)]
			if !ok {
				return p, fmt.Errorf("bad LMUL %q", field)
			}
			p.LMULs = append(p.LMULs, l)
		}
	}

	if tails != "" {
		byName := map[string]rvv.TailPolicy{
			"tu": rvv.TailUndisturbed,
			"ta": rvv.TailAgnostic,
		}
		for _, field := range strings.Split(tails, ",") {
			t, ok := byName[strings.TrimSpace(field)]
			if !ok {
				return p, fmt.Errorf("bad tail policy %q", field)
			}
			p.Tails = append(p.Tails, t)
		}
	}

	if masks != "" {
		byName := map[string]rvv.MaskPolicy{
			"mu": rvv.MaskUndisturbed,
			"ma": rvv.MaskAgnostic,
			"um": rvv.MaskUnmasked,
		}
		for _, field := range strings.Split(masks, ",") {
			m, ok := byName[strings.TrimSpace(field)]
			if !ok {
				return p, fmt.Errorf("bad mask policy %q", field)
			}
			p.Masks = append(p.Masks, m)
		}
	}

	return p, nil
}
