// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command nockeval evaluates a single (subject . formula) expression and
// prints the reduced noun or the error that stopped reduction.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/hoplight/nockvm/store"
	"github.com/hoplight/nockvm/vm"
)

var (
	dashConfig = flag.String("c", "", "path to a YAML config file (tickCap, storeDir, compression)")
	dashTicks  = flag.Uint64("ticks", 0, "override the configured tick cap (0: use config or default)")
)

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-c config.yaml] [-ticks n] '(subject . formula)'\n", os.Args[0])
		flag.Usage()
		os.Exit(1)
	}

	cfg := store.DefaultConfig()
	if *dashConfig != "" {
		var err error
		cfg, err = store.LoadConfig(*dashConfig)
		if err != nil {
			exitf("%s", err)
		}
	}
	if *dashTicks != 0 {
		cfg.TickCap = *dashTicks
	}

	eff, err := cfg.Open()
	if err != nil {
		exitf("opening store: %s", err)
	}

	expr, err := parseNoun(strings.TrimSpace(args[0]))
	if err != nil {
		exitf("parsing expression: %s", err)
	}

	requestID := uuid.New().String()
	logger := log.New(os.Stderr, "nockeval ["+requestID+"] ", log.LstdFlags)
	if ds, ok := eff.(*store.DiskStore); ok {
		ds.Log = logger.Printf
	}

	result, err := vm.Eval(expr, eff, cfg.TickCap)
	if err != nil {
		logger.Printf("eval failed: %s", err)
		exitf("%s", err)
	}
	logger.Printf("eval ok")
	fmt.Println(formatNoun(result))
}
