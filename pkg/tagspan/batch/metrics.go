package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts writer activity. A nil *Metrics records nothing.
type Metrics struct {
	documentsWritten prometheus.Counter
	filesRotated     prometheus.Counter
	bytesWritten     prometheus.Counter
}

// NewMetrics creates the writer counters and registers them on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		documentsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagspan_documents_written_total",
			Help: "Number of document blocks appended to output files",
		}),
		filesRotated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagspan_files_rotated_total",
			Help: "Number of output batch files opened",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagspan_bytes_written_total",
			Help: "Bytes of formatted output written",
		}),
	}

	for _, c := range []prometheus.Collector{m.documentsWritten, m.filesRotated, m.bytesWritten} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) document(n int) {
	if m == nil {
		return
	}
	m.documentsWritten.Inc()
	m.bytesWritten.Add(float64(n))
}

func (m *Metrics) rotated() {
	if m == nil {
		return
	}
	m.filesRotated.Inc()
}
