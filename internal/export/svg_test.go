package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/dynamo"
)

func circle(n int) *dynamo.Trajectory {
	traj := dynamo.NewTrajectory(n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		traj.Append(t, dynamo.State{t, 1 - t})
	}
	return traj
}

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("invalid xml: %v\n%s", err, doc)
		}
	}
}

func TestTimeSeriesSVG(t *testing.T) {
	var buf bytes.Buffer
	sink := SVGSink{W: &buf, Width: 200, Height: 100}
	if err := sink.Plot(circle(10), []string{"y <pos>"}); err != nil {
		t.Fatal(err)
	}
	doc := buf.String()
	wellFormed(t, doc)
	if got := strings.Count(doc, "<path"); got != 2 {
		t.Errorf("got %d paths, want 2", got)
	}
	if !strings.Contains(doc, "y &lt;pos&gt;") || !strings.Contains(doc, ">x1<") {
		t.Errorf("legend missing:\n%s", doc)
	}
}

func TestPhaseSVG(t *testing.T) {
	var buf bytes.Buffer
	sink := SVGSink{W: &buf, Phase: &[2]int{0, 1}}
	if err := sink.Plot(circle(10), nil); err != nil {
		t.Fatal(err)
	}
	wellFormed(t, buf.String())
	if got := strings.Count(buf.String(), " L"); got != 9 {
		t.Errorf("got %d segments, want 9", got)
	}

	sink.Phase = &[2]int{0, 5}
	if err := sink.Plot(circle(10), nil); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
}

func TestSVGTooShort(t *testing.T) {
	var buf bytes.Buffer
	if err := (SVGSink{W: &buf}).Plot(circle(1), nil); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("got %v, want ErrInvalidParameter", err)
	}
	if TrajectoryToSVG([]analysis.Point{{X: 1, Y: 1}}, 10, 10, "#fff") != "" {
		t.Error("expected empty document for a single point")
	}
}
