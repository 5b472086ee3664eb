// Command sump-server wires a transport, a pin reader, and a capture
// engine into the analyzer facade and runs the SUMP command loop — the
// platform glue the core package intentionally does not own.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jbrzusto/sump-logic-analyzer/analyzer"
	"github.com/jbrzusto/sump-logic-analyzer/capture"
	"github.com/jbrzusto/sump-logic-analyzer/config"
	"github.com/jbrzusto/sump-logic-analyzer/gpiopin"
	"github.com/jbrzusto/sump-logic-analyzer/logadapter"
	"github.com/jbrzusto/sump-logic-analyzer/simpin"
	"github.com/jbrzusto/sump-logic-analyzer/sump"
	"github.com/jbrzusto/sump-logic-analyzer/transport"
	"github.com/jbrzusto/sump-logic-analyzer/transport/serialtransport"
	"github.com/jbrzusto/sump-logic-analyzer/transport/tcptransport"
)

func main() {
	root := &cobra.Command{
		Use:   "sump-server",
		Short: "Run the SUMP logic analyzer command loop",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, found := config.Load()
	log := logrus.New()
	if !found {
		log.Warn(cfg.Analyzer.DeviceDesc)
	}

	xport, err := openTransport(cfg.Transport)
	if err != nil {
		return fmt.Errorf("opening transport: %w", err)
	}

	var engine capture.Engine
	switch cfg.Analyzer.Variant {
	case "dma":
		return fmt.Errorf("dma variant requires a platform-specific HardwareCapture; wire one in place of this cmd")
	default:
		engine = capture.NewSoftwareEngine()
	}

	reader, err := openPinReader(cfg.Analyzer)
	if err != nil {
		return fmt.Errorf("opening pin reader: %w", err)
	}
	clock := simpin.RealClock{}
	obs := logadapter.New(log)

	a := analyzer.New(engine, reader, xport, clock, obs)
	a.Begin(analyzer.BeginParams{
		StartPin:        cfg.Analyzer.StartPin,
		PinCount:        cfg.Analyzer.PinCount,
		WordBits:        cfg.Analyzer.WordBits,
		MaxCaptureSize:  cfg.Analyzer.MaxCaptureSize,
		MaxSupportedHz:  cfg.Analyzer.MaxSupportedHz,
		DeviceID:        cfg.Analyzer.DeviceID,
		DeviceDesc:      cfg.Analyzer.DeviceDesc,
		FirmwareVersion: cfg.Analyzer.FirmwareVersion,
	})

	proto := sump.New(a, xport)
	log.Info("sump-server: ready")
	for {
		if xport.BytesAvailable() == 0 {
			time.Sleep(time.Millisecond)
		}
		proto.ProcessCommand()
	}
}

func openTransport(tc config.Transport) (transport.Stream, error) {
	switch tc.Kind {
	case config.TransportTCP:
		return tcptransport.Dial(tc.Addr)
	default:
		return serialtransport.Open(tc.Device, tc.Baud)
	}
}

func openPinReader(ac config.Analyzer) (capture.PinReader, error) {
	switch ac.PinSource {
	case "gpio":
		return gpiopin.Open(ac.GPIORegAddr, ac.StartPin, ac.PinCount)
	default:
		return simpin.NewCounter(ac.WordBits), nil
	}
}
