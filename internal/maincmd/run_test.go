package maincmd_test

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/monkey/internal/filetest"
	"github.com/mna/monkey/internal/maincmd"
)

var testUpdateRunTests = flag.Bool("test.update-run-tests", false, "If set, replace expected run test results with actual results.")

func TestRunFiles(t *testing.T) {
	ctx := context.Background()
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, runtime := range []string{"eval", "vm"} {
		t.Run(runtime, func(t *testing.T) {
			for _, fi := range filetest.SourceFiles(t, srcDir, ".monkey") {
				t.Run(fi.Name(), func(t *testing.T) {
					var buf, ebuf bytes.Buffer
					stdio := mainer.Stdio{
						Stdout: &buf,
						Stderr: &ebuf,
					}

					// error is ignored, we just want it to be printed to ebuf
					_ = maincmd.RunFiles(ctx, stdio, runtime, filepath.Join(srcDir, fi.Name()))
					filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateRunTests)
					filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateRunTests)
				})
			}
		})
	}
}
