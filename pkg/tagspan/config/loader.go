package config

import (
	"github.com/cognicore/tagspan/pkg/tagspan/aggregate"
	"github.com/cognicore/tagspan/pkg/tagspan/annotate"
	"github.com/cognicore/tagspan/pkg/tagspan/batch"
)

// Components holds the pipeline parts built from a configuration
type Components struct {
	Aggregator aggregate.Aggregator
	Sink       *annotate.Sink
	Writer     *batch.Writer
}

// Registry builds the kind registry: the defaults plus configured kinds
func (c *Config) Registry() *annotate.Registry {
	reg := annotate.NewRegistry(annotate.DefaultKinds...)
	for _, k := range c.Annotation.Kinds {
		reg.Add(annotate.Kind{Name: k.Name, Label: k.Label})
	}
	return reg
}

// WriterOptions maps the output section onto batch writer options
func (c *Config) WriterOptions(metrics *batch.Metrics) batch.Options {
	return batch.Options{
		Dir:              c.Output.Dir,
		Prefix:           c.Output.Prefix,
		DocumentsPerFile: c.Output.DocumentsPerFile,
		PadWidth:         c.Output.PadWidth,
		StartBatch:       c.Output.ResumeBatch,
		Metrics:          metrics,
	}
}

// Build constructs the aggregator, sink and writer. The writer creates the
// output directory.
func (c *Config) Build(metrics *batch.Metrics) (*Components, error) {
	w, err := batch.New(c.WriterOptions(metrics))
	if err != nil {
		return nil, err
	}
	return &Components{
		Aggregator: aggregate.New(c.Annotation.OutsideLabel),
		Sink:       annotate.New(c.Annotation.Source, annotate.WithRegistry(c.Registry())),
		Writer:     w,
	}, nil
}
