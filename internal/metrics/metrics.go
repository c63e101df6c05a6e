// Package metrics counts what a run parsed, dropped and produced.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	mentions        prometheus.Counter
	snippets        prometheus.Counter
	malformed       *prometheus.CounterVec
	skipped         *prometheus.CounterVec
	annotationFails prometheus.Counter
	documents       prometheus.Counter
}

// New creates counters registered in a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mentions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websnip_mentions_parsed_total",
			Help: "Mentions emitted by the parser.",
		}),
		snippets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websnip_snippets_parsed_total",
			Help: "Snippets emitted by the parser.",
		}),
		malformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "websnip_malformed_lines_total",
			Help: "Lines dropped as malformed.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "websnip_mentions_skipped_total",
			Help: "Mentions skipped by a stage.",
		}, []string{"reason"}),
		annotationFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websnip_annotation_failures_total",
			Help: "Annotation calls that failed.",
		}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "websnip_documents_written_total",
			Help: "Annotated documents persisted.",
		}),
	}
	m.registry.MustRegister(m.mentions, m.snippets, m.malformed, m.skipped, m.annotationFails, m.documents)
	return m
}

func (m *Metrics) MentionParsed() {
	if m != nil {
		m.mentions.Inc()
	}
}

func (m *Metrics) SnippetParsed() {
	if m != nil {
		m.snippets.Inc()
	}
}

// MalformedLine counts a dropped line; kind is header, info or snippet
func (m *Metrics) MalformedLine(kind string) {
	if m != nil {
		m.malformed.WithLabelValues(kind).Inc()
	}
}

// MentionSkipped counts a Mention a stage refused to process
func (m *Metrics) MentionSkipped(reason string) {
	if m != nil {
		m.skipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) AnnotationFailed() {
	if m != nil {
		m.annotationFails.Inc()
	}
}

func (m *Metrics) DocumentWritten() {
	if m != nil {
		m.documents.Inc()
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes the counters in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
