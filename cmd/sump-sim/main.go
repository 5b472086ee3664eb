// Command sump-sim runs one capture against a simulated counting pin
// reader and prints how many bytes and samples were dumped, the way cmd/pk2 pokes
// FPGA registers directly for diagnostic purposes rather than going
// through the full protocol loop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbrzusto/sump-logic-analyzer/analyzer"
	"github.com/jbrzusto/sump-logic-analyzer/capture"
	"github.com/jbrzusto/sump-logic-analyzer/simpin"
)

// memStream is a minimal transport.Stream that only needs to support
// writes, for collecting a dump in memory.
type memStream struct{ out []byte }

func (m *memStream) ReadByte() (byte, error)         { return 0, fmt.Errorf("not supported") }
func (m *memStream) ReadExact(n int) ([]byte, error) { return nil, fmt.Errorf("not supported") }
func (m *memStream) BytesAvailable() int             { return 0 }
func (m *memStream) WriteBytes(p []byte) (int, error) {
	m.out = append(m.out, p...)
	return len(p), nil
}
func (m *memStream) Flush() error        { return nil }
func (m *memStream) SetTimeoutMs(uint32) {}

func main() {
	var readCount, delayCount int
	var frequencyHz uint32

	root := &cobra.Command{
		Use:   "sump-sim",
		Short: "Run a simulated capture against a counting pin reader",
		RunE: func(cmd *cobra.Command, args []string) error {
			xport := &memStream{}
			reader := simpin.NewCounter(8)
			a := analyzer.New(capture.NewSoftwareEngine(), reader, xport, simpin.RealClock{}, nil)
			a.Begin(analyzer.BeginParams{
				PinCount:       8,
				WordBits:       8,
				MaxCaptureSize: 4096,
				MaxSupportedHz: 10_000_000,
				DeviceID:       "1ALS",
			})
			a.Params().ReadCount = readCount
			a.Params().DelayCount = delayCount
			a.Params().FrequencyHz = frequencyHz
			a.Arm()
			fmt.Printf("captured %d bytes (%d samples)\n", len(xport.out), len(xport.out)/4)
			return nil
		},
	}
	root.Flags().IntVar(&readCount, "read-count", 1024, "samples to capture")
	root.Flags().IntVar(&delayCount, "delay-count", 1024, "post-trigger samples")
	root.Flags().Uint32Var(&frequencyHz, "frequency", 1_000_000, "sample rate in Hz")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
