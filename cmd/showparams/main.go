// Command showparams prints the live capture parameters at a repeated
// interval, in the spirit of cmd/showreg's reflect-driven register dump.
//
// Usage:
//
//	showparams N
//
// where N is the number of milliseconds to wait between reads.
package main

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/jbrzusto/sump-logic-analyzer/analyzer"
	"github.com/jbrzusto/sump-logic-analyzer/capture"
	"github.com/jbrzusto/sump-logic-analyzer/config"
	"github.com/jbrzusto/sump-logic-analyzer/simpin"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: showparams N")
		os.Exit(1)
	}
	ms, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _ := config.Load()
	reader := simpin.NewCounter(cfg.Analyzer.WordBits)
	a := analyzer.New(capture.NewSoftwareEngine(), reader, nil, simpin.RealClock{}, nil)
	a.Begin(analyzer.BeginParams{
		StartPin:       cfg.Analyzer.StartPin,
		PinCount:       cfg.Analyzer.PinCount,
		WordBits:       cfg.Analyzer.WordBits,
		MaxCaptureSize: cfg.Analyzer.MaxCaptureSize,
		MaxSupportedHz: cfg.Analyzer.MaxSupportedHz,
		DeviceID:       cfg.Analyzer.DeviceID,
	})

	for {
		dumpParams(a.Params())
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}

func dumpParams(p *capture.Parameters) {
	v := reflect.ValueOf(*p)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fmt.Printf("%-16s = %v\n", t.Field(i).Name, v.Field(i).Interface())
	}
	fmt.Println("---")
}
